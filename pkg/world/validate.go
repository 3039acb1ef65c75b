package world

import (
	"fmt"
	"strings"
)

// ValidationError collects everything wrong with a world document. A world
// with any validation error is never partially loaded.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid world: %s", strings.Join(e.Problems, "; "))
}

func (e *ValidationError) add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// Validate checks the structural soundness of a generated world:
// unique ids, assigned_npc and requires/unlocks references resolve, the
// requires graph is acyclic, and acts reference existing tasks and
// locations. A cyclic requires graph would leave tasks locked forever
// rather than crash, so it is rejected up front.
func (w *World) Validate() error {
	verr := &ValidationError{}

	characters := make(map[string]bool, len(w.Characters))
	for _, c := range w.Characters {
		if c.ID == "" {
			verr.add("character %q has no id", c.Name)
			continue
		}
		if characters[c.ID] {
			verr.add("duplicate character id %q", c.ID)
		}
		characters[c.ID] = true
		if c.TrustThreshold < 0 || c.TrustThreshold > 100 {
			verr.add("character %q trust_threshold %d out of range 0-100", c.ID, c.TrustThreshold)
		}
	}

	tasks := make(map[string]bool, len(w.Tasks))
	for _, t := range w.Tasks {
		if t.ID == "" {
			verr.add("task %q has no id", t.Title)
			continue
		}
		if tasks[t.ID] {
			verr.add("duplicate task id %q", t.ID)
		}
		tasks[t.ID] = true
	}

	locations := make(map[string]bool, len(w.Locations))
	for _, l := range w.Locations {
		if l.ID == "" {
			verr.add("location %q has no id", l.Name)
			continue
		}
		if locations[l.ID] {
			verr.add("duplicate location id %q", l.ID)
		}
		locations[l.ID] = true
	}

	for _, t := range w.Tasks {
		if t.AssignedNPC != "" && !characters[t.AssignedNPC] {
			verr.add("task %q assigned_npc %q does not exist", t.ID, t.AssignedNPC)
		}
		for _, req := range t.Requires {
			if !tasks[req] {
				verr.add("task %q requires unknown task %q", t.ID, req)
			}
		}
		for _, unlock := range t.Unlocks {
			if !tasks[unlock] {
				verr.add("task %q unlocks unknown task %q", t.ID, unlock)
			}
		}
	}

	// Only check for cycles if the reference check passed; a dangling
	// requires id would confuse the walk.
	if len(verr.Problems) == 0 {
		if cycle := w.findRequiresCycle(); len(cycle) > 0 {
			verr.add("requires cycle: %s", strings.Join(cycle, " -> "))
		}
	}

	for _, act := range w.StoryGraph.Acts {
		for _, taskID := range act.TasksInAct {
			if !tasks[taskID] {
				verr.add("act %d references unknown task %q", act.ActNumber, taskID)
			}
		}
		if act.LocationID != "" && !locations[act.LocationID] {
			verr.add("act %d references unknown location %q", act.ActNumber, act.LocationID)
		}
	}

	for _, l := range w.Locations {
		for _, npcID := range l.NPCsPresent {
			if !characters[npcID] {
				verr.add("location %q lists unknown character %q", l.ID, npcID)
			}
		}
	}

	if len(verr.Problems) > 0 {
		return verr
	}
	return nil
}

// findRequiresCycle runs a three-color DFS over the requires graph and
// returns one cycle, if any, as a list of task ids.
func (w *World) findRequiresCycle() []string {
	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)

	requires := make(map[string][]string, len(w.Tasks))
	for _, t := range w.Tasks {
		requires[t.ID] = t.Requires
	}

	color := make(map[string]int, len(w.Tasks))
	var stack []string
	var cycle []string

	var visit func(id string) bool
	visit = func(id string) bool {
		color[id] = inStack
		stack = append(stack, id)
		for _, req := range requires[id] {
			switch color[req] {
			case inStack:
				// Found it. Slice the stack from the repeated node.
				for i, s := range stack {
					if s == req {
						cycle = append(append([]string{}, stack[i:]...), req)
						return true
					}
				}
			case unvisited:
				if visit(req) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = done
		return false
	}

	for _, t := range w.Tasks {
		if color[t.ID] == unvisited && visit(t.ID) {
			return cycle
		}
	}
	return nil
}
