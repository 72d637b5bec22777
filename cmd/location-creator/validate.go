package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jwebster45206/location-creator/pkg/location"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [locations.json]",
		Short: "Check a locations file for malformed records and broken links",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := location.DefaultFile
			if len(args) == 1 {
				filename = args[0]
			}

			validator := &LocationValidator{}
			if err := validator.validateFile(filename); err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Locations file is valid!")
			return nil
		},
	}
}

type LocationValidator struct {
	errors []string
}

func (v *LocationValidator) validateFile(filename string) error {
	if !strings.HasSuffix(filepath.Base(filename), ".json") {
		return fmt.Errorf("locations file must have .json extension: %s", filepath.Base(filename))
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	return v.validate(filename, data)
}

func (v *LocationValidator) validate(filename string, data []byte) error {
	v.errors = nil

	if !json.Valid(data) {
		return fmt.Errorf("file %s contains invalid JSON", filename)
	}

	var raw map[string]map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("file %s is not an object of location records: %w", filename, err)
	}

	store := location.NewStore()
	if err := store.Load(data); err != nil {
		return fmt.Errorf("file %s failed to load: %w", filename, err)
	}

	for _, id := range store.IDs() {
		v.validateFields(id, raw[id])

		rec, err := store.Get(id)
		if err != nil {
			v.addError(err.Error())
			continue
		}
		v.validateRecord(rec)
	}

	for _, ref := range store.Dangling() {
		v.addError(fmt.Sprintf("location %s links %s to missing location %q", ref.From, ref.Direction, ref.To))
	}

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}

	return nil
}

func (v *LocationValidator) validateFields(id string, fields map[string]json.RawMessage) {
	var unknown []string
	for key := range fields {
		if !location.KnownFields[key] {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		v.addError(fmt.Sprintf("location %s has unknown field %q", id, key))
	}

	var conns map[string]json.RawMessage
	if raw, ok := fields["connections"]; ok && json.Unmarshal(raw, &conns) == nil {
		var keys []string
		for key := range conns {
			if _, ok := location.ParseDirection(key); !ok || len(key) != 1 {
				keys = append(keys, key)
			}
		}
		sort.Strings(keys)
		for _, key := range keys {
			v.addError(fmt.Sprintf("location %s has unknown connection direction %q", id, key))
		}
	}
}

func (v *LocationValidator) validateRecord(rec location.Record) {
	chances := []struct {
		name  string
		value string
	}{
		{"monsterChance", rec.MonsterChance},
		{"randomTreasureChance", rec.RandomTreasureChance},
		{"dungeonChance", rec.DungeonChance},
	}
	for _, c := range chances {
		if !location.ValidChance(c.value) {
			v.addError(fmt.Sprintf("location %s has %s %q, expected an integer from %d to %d",
				rec.ID, c.name, c.value, location.MinChance, location.MaxChance))
		}
	}
}

func (v *LocationValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}
