package engine

import (
	"github.com/fieldline/fieldline/internal/form"
)

// dependencyGraph maps a computed target to the computed targets it
// depends on. Dependencies on plain (non-computed) fields are not edges;
// they are always available before the pass starts.
type dependencyGraph map[string][]string

// buildDependencyGraph constructs the computed-field dependency graph
// from declared dependencies. An edge a -> b means "a reads b's output".
func buildDependencyGraph(computed []form.ComputedField) dependencyGraph {
	targets := make(map[string]bool, len(computed))
	for _, c := range computed {
		targets[c.Target] = true
	}

	graph := make(dependencyGraph, len(computed))
	for _, c := range computed {
		edges := []string{}
		for _, dep := range c.Dependencies {
			if targets[dep] {
				edges = append(edges, dep)
			}
		}
		graph[c.Target] = edges
	}
	return graph
}

// hasSelfLoop checks if a node has an edge to itself.
func hasSelfLoop(node string, graph dependencyGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
//
// Because edges point from a computed field to the fields it reads,
// every SCC is emitted after the SCCs it depends on. Processing the
// result in emission order therefore evaluates dependencies first.
//
// Single-node SCCs without self-loops are NOT cycles.
func tarjanSCC(graph dependencyGraph, nodes []string) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root node: pop the stack and emit an SCC
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	// Visit nodes in declaration order so the emitted order is
	// deterministic for a given schema.
	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

// cyclePath reconstructs a display path through an SCC, ending where it
// started: ["a", "b", "a"]. For self-loops the path is [n, n].
func cyclePath(scc []string, graph dependencyGraph) []string {
	if len(scc) == 0 {
		return nil
	}
	if len(scc) == 1 {
		return []string{scc[0], scc[0]}
	}

	members := make(map[string]bool, len(scc))
	for _, node := range scc {
		members[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if members[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == "" {
			break
		}

		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}

	return path
}
