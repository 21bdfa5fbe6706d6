package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Room", "Capacity"},
		Rows: []map[string]string{
			{"Room": "Lab 101", "Capacity": "30"},
			{"Room": "Workshop B", "Capacity": "20"},
		},
	}
}

func TestCSVRender(t *testing.T) {
	data, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Room,Capacity", lines[0])
	assert.Equal(t, "Lab 101,30", lines[1])
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestCSVRenderMissingCellsStayEmpty(t *testing.T) {
	data, err := NewCSVExporter().Render(Dataset{
		Headers: []string{"Room", "Capacity"},
		Rows:    []map[string]string{{"Room": "Lab 101"}},
	})
	require.NoError(t, err)
	assert.Contains(t, string(data), "Lab 101,")
}

func TestPDFRender(t *testing.T) {
	table := sampleDataset()
	data, err := NewPDFExporter().Render(Document{
		Title:    "Rooms",
		Subtitle: "All blocks",
		Sections: []Section{
			{Heading: "Summary", KeyValues: [][2]string{{"Total", "2"}}},
			{Heading: "Rooms", Table: &table},
		},
		Footer: "Generated for testing",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestXLSXRender(t *testing.T) {
	data, err := NewXLSXExporter().Render([]Sheet{{Name: "Rooms", Data: sampleDataset()}})
	require.NoError(t, err)
	// XLSX files are zip archives.
	assert.True(t, strings.HasPrefix(string(data), "PK"))
}
