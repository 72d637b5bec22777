package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationValidator_Validate(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		wantErr     bool
		errContains []string
	}{
		{
			name: "valid file",
			data: `{
				"0": {"img": "images/a.png", "connections": {"n": "1", "e": "", "w": "", "s": "", "u": "", "d": ""},
				      "description": "", "shortDescription": "", "terrain": "Forest",
				      "monsterChance": "10", "randomTreasureChance": "0", "dungeonChance": "100"},
				"1": {"connections": {"s": "0"}}
			}`,
		},
		{
			name: "legacy keys are accepted",
			data: `{"0": {"image": "images/a.png", "connections": {"W": "0"}}}`,
		},
		{
			name:        "invalid json",
			data:        `{"0": {`,
			wantErr:     true,
			errContains: []string{"invalid JSON"},
		},
		{
			name:        "top level array",
			data:        `[]`,
			wantErr:     true,
			errContains: []string{"not an object of location records"},
		},
		{
			name:        "unknown field",
			data:        `{"0": {"terain": "Forest"}}`,
			wantErr:     true,
			errContains: []string{`location 0 has unknown field "terain"`},
		},
		{
			name:        "unknown direction",
			data:        `{"0": {"connections": {"ne": "0"}}}`,
			wantErr:     true,
			errContains: []string{`unknown connection direction "ne"`},
		},
		{
			name:    "chances out of range",
			data:    `{"0": {"monsterChance": "101", "randomTreasureChance": "-1", "dungeonChance": "lots"}}`,
			wantErr: true,
			errContains: []string{
				`monsterChance "101"`,
				`randomTreasureChance "-1"`,
				`dungeonChance "lots"`,
			},
		},
		{
			name:        "dangling connection",
			data:        `{"0": {"connections": {"u": "7"}}}`,
			wantErr:     true,
			errContains: []string{`location 0 links up to missing location "7"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &LocationValidator{}
			err := v.validate("locations.json", []byte(tt.data))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, s := range tt.errContains {
				assert.Contains(t, err.Error(), s)
			}
		})
	}
}

func TestLocationValidator_ValidateFile(t *testing.T) {
	dir := t.TempDir()

	v := &LocationValidator{}
	err := v.validateFile(filepath.Join(dir, "locations.txt"))
	assert.ErrorContains(t, err, "must have .json extension")

	err = v.validateFile(filepath.Join(dir, "missing.json"))
	assert.ErrorContains(t, err, "failed to read file")

	path := filepath.Join(dir, "locations.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"0": {}}`), 0o644))
	assert.NoError(t, v.validateFile(path))
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"0": {"connections": {"n": "0"}}}`), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte(`{"0": {"connections": {"n": "5"}}}`), 0o644))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"validate", good})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Locations file is valid!")

	out.Reset()
	cmd = newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"validate", bad})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing location")
}
