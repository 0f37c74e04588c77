// # internal/graph/detect.go
package graph

import "sort"

// DetectCycles finds import cycles over valid resolved edges. Cycles are
// reported as relative paths. Traversal starts from sorted keys so repeated
// runs over the same map report cycles in the same order.
func (g *Graph) DetectCycles() [][]string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	adjacency := g.adjacencyLocked()

	nodes := make([]string, 0, len(adjacency))
	for node := range adjacency {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)

	var cycles [][]string
	visited := make(map[string]bool)
	onStack := make(map[string]bool)

	var walk func(curr string, path []string)
	walk = func(curr string, path []string) {
		visited[curr] = true
		onStack[curr] = true
		path = append(path, curr)

		for _, next := range adjacency[curr] {
			if onStack[next] {
				cycleStart := -1
				for i, p := range path {
					if p == next {
						cycleStart = i
						break
					}
				}
				if cycleStart != -1 {
					cycle := make([]string, 0, len(path)-cycleStart)
					for _, abs := range path[cycleStart:] {
						cycle = append(cycle, g.modules[abs].RelativePath)
					}
					cycles = append(cycles, cycle)
				}
			} else if !visited[next] {
				walk(next, path)
			}
		}

		onStack[curr] = false
	}

	for _, node := range nodes {
		if !visited[node] {
			walk(node, nil)
		}
	}

	return cycles
}

// ModuleMetrics carries per-module fan-in, fan-out and dependency depth.
type ModuleMetrics struct {
	Depth  int
	FanIn  int
	FanOut int
}

// ComputeMetrics returns fan-in/fan-out and depth per relative path. Depth is
// the longest chain of resolved imports below the module; cycles are condensed
// into strongly connected components first so depth stays finite.
func (g *Graph) ComputeMetrics() map[string]ModuleMetrics {
	g.mu.RLock()
	defer g.mu.RUnlock()

	adjacency := g.adjacencyLocked()

	nodes := make([]string, 0, len(adjacency))
	for node := range adjacency {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)

	fanIn := make(map[string]int, len(nodes))
	fanOut := make(map[string]int, len(nodes))
	for _, from := range nodes {
		fanOut[from] = len(adjacency[from])
		for _, to := range adjacency[from] {
			fanIn[to]++
		}
	}

	componentOf, components := stronglyConnectedComponents(nodes, adjacency)
	componentEdges := make(map[int]map[int]bool, len(components))
	for _, from := range nodes {
		fromComp := componentOf[from]
		for _, to := range adjacency[from] {
			toComp := componentOf[to]
			if fromComp == toComp {
				continue
			}
			if componentEdges[fromComp] == nil {
				componentEdges[fromComp] = make(map[int]bool)
			}
			componentEdges[fromComp][toComp] = true
		}
	}

	depthByComp := make(map[int]int, len(components))
	var computeDepth func(int) int
	computeDepth = func(comp int) int {
		if depth, ok := depthByComp[comp]; ok {
			return depth
		}
		maxDepth := 0
		for next := range componentEdges[comp] {
			candidate := 1 + computeDepth(next)
			if candidate > maxDepth {
				maxDepth = candidate
			}
		}
		depthByComp[comp] = maxDepth
		return maxDepth
	}
	for comp := range components {
		computeDepth(comp)
	}

	metrics := make(map[string]ModuleMetrics, len(nodes))
	for _, node := range nodes {
		metrics[g.modules[node].RelativePath] = ModuleMetrics{
			Depth:  depthByComp[componentOf[node]],
			FanIn:  fanIn[node],
			FanOut: fanOut[node],
		}
	}
	return metrics
}

// adjacencyLocked builds the deduplicated valid-edge adjacency over absolute
// paths. Caller holds at least a read lock.
func (g *Graph) adjacencyLocked() map[string][]string {
	adjacency := make(map[string][]string, len(g.modules))
	for from, mod := range g.modules {
		targetSet := make(map[string]bool)
		for _, dep := range mod.Dependencies {
			if dep.ResolvedPath == "" || dep.ResolvedPath == from {
				continue
			}
			if _, ok := g.modules[dep.ResolvedPath]; ok {
				targetSet[dep.ResolvedPath] = true
			}
		}
		targets := make([]string, 0, len(targetSet))
		for to := range targetSet {
			targets = append(targets, to)
		}
		sort.Strings(targets)
		adjacency[from] = targets
	}
	return adjacency
}

func stronglyConnectedComponents(nodes []string, adjacency map[string][]string) (map[string]int, [][]string) {
	index := 0
	stack := make([]string, 0, len(nodes))
	onStack := make(map[string]bool, len(nodes))
	indexByNode := make(map[string]int, len(nodes))
	lowLink := make(map[string]int, len(nodes))
	componentOf := make(map[string]int, len(nodes))
	components := make([][]string, 0)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indexByNode[v] = index
		lowLink[v] = index
		index++

		stack = append(stack, v)
		onStack[v] = true

		for _, w := range adjacency[v] {
			if _, seen := indexByNode[w]; !seen {
				strongConnect(w)
				if lowLink[w] < lowLink[v] {
					lowLink[v] = lowLink[w]
				}
			} else if onStack[w] && indexByNode[w] < lowLink[v] {
				lowLink[v] = indexByNode[w]
			}
		}

		if lowLink[v] != indexByNode[v] {
			return
		}

		component := make([]string, 0)
		for {
			last := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[last] = false
			component = append(component, last)
			if last == v {
				break
			}
		}
		sort.Strings(component)
		compID := len(components)
		components = append(components, component)
		for _, n := range component {
			componentOf[n] = compID
		}
	}

	for _, node := range nodes {
		if _, seen := indexByNode[node]; !seen {
			strongConnect(node)
		}
	}

	return componentOf, components
}
