package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/opengaia/gaia-engine/pkg/world"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <bible.json>\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	validator := &BibleValidator{}

	if err := validator.validateFile(filename); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Game bible is valid!")
}

type BibleValidator struct {
	errors []string
}

func (v *BibleValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".json") {
		return fmt.Errorf("bible file must have .json extension: %s", baseName)
	}

	nameWithoutExt := strings.TrimSuffix(baseName, ".json")
	if !isValidBibleFilename(nameWithoutExt) {
		return fmt.Errorf("bible filename '%s' must be lowercase snake_case (e.g., my_world.json, not my-world.json or MyWorld.json)", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	v.errors = nil

	if !json.Valid(data) {
		return fmt.Errorf("file %s contains invalid JSON", filename)
	}

	w, err := strictDecode(data)
	if err != nil {
		return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filename, err)
	}

	if err := w.Validate(); err != nil {
		var verr *world.ValidationError
		if errors.As(err, &verr) {
			for _, p := range verr.Problems {
				v.addError(p)
			}
		} else {
			return err
		}
	}

	v.validateIDs(w)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}

	return nil
}

// strictDecode rejects unknown fields in either the bare bible form
// or the {"game_bible": ...} envelope the backend returns.
func strictDecode(data []byte) (*world.World, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}

	if raw, ok := probe["game_bible"]; ok {
		data = raw
	}

	var w world.World
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (v *BibleValidator) validateIDs(w *world.World) {
	for _, c := range w.Characters {
		v.validateIDFormat("character ID", c.ID)
	}
	for _, t := range w.Tasks {
		v.validateIDFormat("task ID", t.ID)
		for _, req := range t.Requires {
			v.validateIDFormat("task requires", req)
		}
		for _, u := range t.Unlocks {
			v.validateIDFormat("task unlocks", u)
		}
	}
	for _, l := range w.Locations {
		v.validateIDFormat("location ID", l.ID)
	}
	for _, act := range w.StoryGraph.Acts {
		v.validateIDFormat("act location", act.LocationID)
	}
}

func (v *BibleValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		return
	}

	if !isValidID(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, id))
	}
}

func (v *BibleValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var (
	validIDRegex       = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
	validFilenameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}

func isValidBibleFilename(name string) bool {
	// Allow 'x.' prefix for experimental bibles
	name = strings.TrimPrefix(name, "x.")
	return validFilenameRegex.MatchString(name)
}
