package world

import (
	"strings"
	"testing"
)

func validWorld() *World {
	return &World{
		Summary: Summary{
			Title:   "Test World",
			Setting: "A test setting",
			EndGoal: "Win",
		},
		Characters: []Character{
			{ID: "hero", Name: "Hero", Role: RoleProtagonist, TrustThreshold: 0},
			{ID: "gatekeeper", Name: "Gatekeeper", Role: RoleNPC, TrustThreshold: 60},
		},
		Tasks: []Task{
			{ID: "task_first", Title: "First", Type: TaskTypePersuasion, AssignedNPC: "gatekeeper", Unlocks: []string{"task_second"}},
			{ID: "task_second", Title: "Second", Type: TaskTypeNavigation, Requires: []string{"task_first"}},
		},
		StoryGraph: StoryGraph{
			Acts: []Act{
				{ActNumber: 1, Title: "Act One", TasksInAct: []string{"task_first", "task_second"}, LocationID: "loc_gate"},
			},
		},
		Locations: []Location{
			{ID: "loc_gate", Name: "The Gate", NPCsPresent: []string{"gatekeeper"}},
		},
	}
}

func TestWorld_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*World)
		wantErr string
	}{
		{
			name:   "valid world",
			mutate: func(w *World) {},
		},
		{
			name: "duplicate character id",
			mutate: func(w *World) {
				w.Characters = append(w.Characters, Character{ID: "gatekeeper", Name: "Twin"})
			},
			wantErr: `duplicate character id "gatekeeper"`,
		},
		{
			name: "character missing id",
			mutate: func(w *World) {
				w.Characters = append(w.Characters, Character{Name: "Ghost"})
			},
			wantErr: `character "Ghost" has no id`,
		},
		{
			name: "trust threshold out of range",
			mutate: func(w *World) {
				w.Characters[1].TrustThreshold = 120
			},
			wantErr: "trust_threshold 120 out of range",
		},
		{
			name: "duplicate task id",
			mutate: func(w *World) {
				w.Tasks = append(w.Tasks, Task{ID: "task_first", Title: "Again"})
			},
			wantErr: `duplicate task id "task_first"`,
		},
		{
			name: "assigned npc does not exist",
			mutate: func(w *World) {
				w.Tasks[0].AssignedNPC = "stranger"
			},
			wantErr: `assigned_npc "stranger" does not exist`,
		},
		{
			name: "requires unknown task",
			mutate: func(w *World) {
				w.Tasks[1].Requires = []string{"task_missing"}
			},
			wantErr: `requires unknown task "task_missing"`,
		},
		{
			name: "unlocks unknown task",
			mutate: func(w *World) {
				w.Tasks[0].Unlocks = []string{"task_missing"}
			},
			wantErr: `unlocks unknown task "task_missing"`,
		},
		{
			name: "act references unknown task",
			mutate: func(w *World) {
				w.StoryGraph.Acts[0].TasksInAct = append(w.StoryGraph.Acts[0].TasksInAct, "task_missing")
			},
			wantErr: `act 1 references unknown task "task_missing"`,
		},
		{
			name: "act references unknown location",
			mutate: func(w *World) {
				w.StoryGraph.Acts[0].LocationID = "loc_missing"
			},
			wantErr: `act 1 references unknown location "loc_missing"`,
		},
		{
			name: "location lists unknown character",
			mutate: func(w *World) {
				w.Locations[0].NPCsPresent = append(w.Locations[0].NPCsPresent, "stranger")
			},
			wantErr: `location "loc_gate" lists unknown character "stranger"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := validWorld()
			tt.mutate(w)
			err := w.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Expected no error, got: %v", err)
				}
				return
			}

			if err == nil {
				t.Fatalf("Expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestWorld_Validate_RequiresCycle(t *testing.T) {
	w := validWorld()
	w.Tasks = []Task{
		{ID: "task_a", Title: "A", Requires: []string{"task_c"}},
		{ID: "task_b", Title: "B", Requires: []string{"task_a"}},
		{ID: "task_c", Title: "C", Requires: []string{"task_b"}},
	}
	w.StoryGraph.Acts = nil

	err := w.Validate()
	if err == nil {
		t.Fatal("Expected cycle error, got nil")
	}
	if !strings.Contains(err.Error(), "requires cycle") {
		t.Errorf("Expected requires cycle error, got: %v", err)
	}
	// The walk should report every member of the loop.
	for _, id := range []string{"task_a", "task_b", "task_c"} {
		if !strings.Contains(err.Error(), id) {
			t.Errorf("Expected cycle to mention %q, got: %v", id, err)
		}
	}
}

func TestWorld_Validate_SelfCycle(t *testing.T) {
	w := validWorld()
	w.Tasks[0].Requires = []string{"task_first"}

	err := w.Validate()
	if err == nil {
		t.Fatal("Expected cycle error for self-referencing task, got nil")
	}
	if !strings.Contains(err.Error(), "requires cycle") {
		t.Errorf("Expected requires cycle error, got: %v", err)
	}
}

func TestWorld_Validate_CollectsAllProblems(t *testing.T) {
	w := validWorld()
	w.Characters[1].TrustThreshold = -5
	w.Tasks[0].AssignedNPC = "stranger"
	w.StoryGraph.Acts[0].LocationID = "loc_missing"

	err := w.Validate()
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("Expected *ValidationError, got %T", err)
	}
	if len(verr.Problems) != 3 {
		t.Errorf("Expected 3 problems, got %d: %v", len(verr.Problems), verr.Problems)
	}
}

func TestWorld_Validate_SkipsCycleCheckOnDanglingRefs(t *testing.T) {
	w := validWorld()
	w.Tasks[1].Requires = []string{"task_missing"}

	err := w.Validate()
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if strings.Contains(err.Error(), "requires cycle") {
		t.Errorf("Cycle check should not run with dangling refs, got: %v", err)
	}
}
