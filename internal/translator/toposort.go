package translator

import (
	"fmt"
	"sort"
)

// topologicalSort orders passes within a stage using Kahn's algorithm.
// Ties are broken by name so the resulting order is deterministic.
func topologicalSort(passes []Pass) ([]Pass, error) {
	if len(passes) == 0 {
		return []Pass{}, nil
	}

	byName := make(map[string]Pass, len(passes))
	for _, p := range passes {
		name := p.Name()
		if _, exists := byName[name]; exists {
			return nil, fmt.Errorf("duplicate pass name: %q", name)
		}
		byName[name] = p
	}

	graph := make(map[string][]string, len(passes))
	inDegree := make(map[string]int, len(passes))
	for _, p := range passes {
		graph[p.Name()] = []string{}
		inDegree[p.Name()] = 0
	}

	// Cross-stage dependencies are satisfied by stage order, so only
	// edges between passes of this stage are added.
	for _, p := range passes {
		name := p.Name()
		deps := p.Dependencies()
		for _, dep := range deps.MustRunAfter {
			if _, exists := byName[dep]; exists {
				graph[dep] = append(graph[dep], name)
				inDegree[name]++
			}
		}
		for _, after := range deps.MustRunBefore {
			if _, exists := byName[after]; exists {
				graph[name] = append(graph[name], after)
				inDegree[after]++
			}
		}
	}

	var queue []string
	for _, p := range passes {
		if inDegree[p.Name()] == 0 {
			queue = append(queue, p.Name())
		}
	}
	sort.Strings(queue)

	result := make([]Pass, 0, len(passes))
	visited := make(map[string]bool, len(passes))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true
		result = append(result, byName[current])

		neighbors := graph[current]
		sort.Strings(neighbors)
		for _, neighbor := range neighbors {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
				sort.Strings(queue)
			}
		}
	}

	if len(result) != len(passes) {
		unvisited := []string{}
		for _, p := range passes {
			if !visited[p.Name()] {
				unvisited = append(unvisited, p.Name())
			}
		}
		sort.Strings(unvisited)
		return nil, fmt.Errorf("circular dependency detected involving passes: %v", unvisited)
	}

	return result, nil
}

// BuildPipeline groups passes by stage and sorts each stage by its dependencies.
func BuildPipeline(passes []Pass) ([]Pass, error) {
	if len(passes) == 0 {
		return []Pass{}, nil
	}

	byStage := make(map[PassStage][]Pass)
	for _, p := range passes {
		if !IsValidStage(p.Stage()) {
			return nil, fmt.Errorf("pass %q has invalid stage: %q", p.Name(), p.Stage())
		}
		byStage[p.Stage()] = append(byStage[p.Stage()], p)
	}

	result := make([]Pass, 0, len(passes))
	for _, stage := range StageOrder {
		stagePasses, ok := byStage[stage]
		if !ok {
			continue
		}
		sorted, err := topologicalSort(stagePasses)
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", stage, err)
		}
		result = append(result, sorted...)
	}
	return result, nil
}

// ValidateDependencies reports references to unknown passes and dependency cycles.
func ValidateDependencies(passes []Pass) error {
	names := make(map[string]bool, len(passes))
	for _, p := range passes {
		names[p.Name()] = true
	}
	for _, p := range passes {
		deps := p.Dependencies()
		for _, dep := range deps.MustRunAfter {
			if !names[dep] {
				return fmt.Errorf("pass %q depends on missing pass %q", p.Name(), dep)
			}
		}
		for _, after := range deps.MustRunBefore {
			if !names[after] {
				return fmt.Errorf("pass %q requires missing pass %q", p.Name(), after)
			}
		}
	}
	_, err := BuildPipeline(passes)
	return err
}
