// Package quest derives task availability from the world's task graph and
// the set of completed task ids. It is pure over the completed set: the
// progression store owns all mutation.
package quest

import (
	"github.com/opengaia/gaia-engine/pkg/world"
)

// BlockedTask is a task whose prerequisites are not yet met, enriched with
// the titles of the missing prerequisites. The titles are consumed directly
// by the dialogue context sent to the NPC service.
type BlockedTask struct {
	world.Task
	MissingTitles []string `json:"missing_titles"`
}

// Resolution partitions a character's incomplete assigned tasks.
type Resolution struct {
	Active  []world.Task  `json:"active"`
	Blocked []BlockedTask `json:"blocked"`
}

// Resolver answers task-availability questions for one world's task list.
// Task order from the world document is preserved in every result.
type Resolver struct {
	tasks []world.Task
	byID  map[string]*world.Task
}

// NewResolver builds a resolver over the given task list.
func NewResolver(tasks []world.Task) *Resolver {
	r := &Resolver{
		tasks: tasks,
		byID:  make(map[string]*world.Task, len(tasks)),
	}
	for i := range tasks {
		r.byID[tasks[i].ID] = &tasks[i]
	}
	return r
}

// Task returns the task with the given id.
func (r *Resolver) Task(id string) (*world.Task, bool) {
	t, ok := r.byID[id]
	return t, ok
}

// requirementsMet reports whether every prerequisite of t is in done.
// Vacuously true for tasks with no prerequisites.
func requirementsMet(t *world.Task, done map[string]bool) bool {
	for _, req := range t.Requires {
		if !done[req] {
			return false
		}
	}
	return true
}

// ForCharacter partitions the character's incomplete assigned tasks into
// active (prerequisites satisfied) and blocked (at least one unmet
// prerequisite). Blocked tasks carry the titles of their missing
// prerequisites, falling back to the raw id when the prerequisite is not
// in the task table.
func (r *Resolver) ForCharacter(characterID string, done map[string]bool) Resolution {
	var res Resolution
	for i := range r.tasks {
		t := &r.tasks[i]
		if t.AssignedNPC != characterID || done[t.ID] {
			continue
		}
		if requirementsMet(t, done) {
			res.Active = append(res.Active, *t)
			continue
		}
		blocked := BlockedTask{Task: *t}
		for _, req := range t.Requires {
			if done[req] {
				continue
			}
			if dep, ok := r.byID[req]; ok && dep.Title != "" {
				blocked.MissingTitles = append(blocked.MissingTitles, dep.Title)
			} else {
				blocked.MissingTitles = append(blocked.MissingTitles, req)
			}
		}
		res.Blocked = append(res.Blocked, blocked)
	}
	return res
}

// AllDoneFor reports whether the character has at least one assigned task
// and every one of them is completed. A character with no assigned tasks is
// never "all done"; that would trigger a false dismissal on first contact.
func (r *Resolver) AllDoneFor(characterID string, done map[string]bool) bool {
	assigned := 0
	for i := range r.tasks {
		t := &r.tasks[i]
		if t.AssignedNPC != characterID {
			continue
		}
		assigned++
		if !done[t.ID] {
			return false
		}
	}
	return assigned > 0
}

// Sweep auto-completes every unassigned, non-persuasion task whose
// prerequisites are satisfied, iterating until a pass completes nothing
// new. Completing one task can unlock another, so a single pass is not
// enough on branching graphs; the DAG invariant bounds the iteration at
// the task count. Persuasion-family tasks always require a dialogue turn
// and are never swept, assigned or not.
//
// Sweep mutates done and returns the newly completed ids in task-list
// order across passes.
func (r *Resolver) Sweep(done map[string]bool) []string {
	var completed []string
	for pass := 0; pass <= len(r.tasks); pass++ {
		progressed := false
		for i := range r.tasks {
			t := &r.tasks[i]
			if done[t.ID] || t.AssignedNPC != "" || t.IsPersuasion() {
				continue
			}
			if !requirementsMet(t, done) {
				continue
			}
			done[t.ID] = true
			completed = append(completed, t.ID)
			progressed = true
		}
		if !progressed {
			break
		}
	}
	return completed
}
