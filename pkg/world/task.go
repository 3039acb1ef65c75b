package world

// Task types observed from the world-generation service. Only the
// persuasion family requires a dialogue turn to complete; the rest may be
// auto-completed once their prerequisites are satisfied.
const (
	TaskTypePersuasion          = "persuasion"
	TaskTypeEmotionalPersuasion = "emotional persuasion"
	TaskTypeAIPersuasion        = "AI persuasion"
	TaskTypeDataRetrieval       = "data retrieval"
	TaskTypeNavigation          = "navigation"
	TaskTypeTimedAction         = "timed action sequence"
)

// Task is a single quest objective. AssignedNPC empty means no character
// gates completion. Requires must form a DAG across the task list; Validate
// rejects cycles at load time.
type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Type        string   `json:"type"`
	AssignedNPC string   `json:"assigned_npc,omitempty"`
	Unlocks     []string `json:"unlocks,omitempty"`
	Requires    []string `json:"requires,omitempty"`

	// Blocking is narrative metadata from the generator. No engine code
	// path gates on it.
	Blocking bool `json:"blocking,omitempty"`

	// CompletionCondition is human-readable and evaluated by the dialogue
	// service, not by the engine.
	CompletionCondition string `json:"completion_condition,omitempty"`
	Reward              string `json:"reward,omitempty"`
}

// IsPersuasion reports whether the task requires a dialogue turn to
// complete. Persuasion tasks are excluded from auto-completion sweeps even
// when unassigned.
func (t *Task) IsPersuasion() bool {
	switch t.Type {
	case TaskTypePersuasion, TaskTypeEmotionalPersuasion, TaskTypeAIPersuasion:
		return true
	}
	return false
}
