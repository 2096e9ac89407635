package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planningDataset() Dataset {
	return Dataset{
		Headers: []string{"Date", "Subject", "Classes"},
		Rows: []map[string]string{
			{"Date": "2025-01-11", "Subject": "MATHEMATIQUES", "Classes": "2A 2B"},
			{"Date": "2025-01-25", "Subject": "SVT", "Classes": "2A"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	payload, err := NewCSVExporter().Render(planningDataset())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Subject,Classes", lines[0])
	assert.Equal(t, "2025-01-11,MATHEMATIQUES,2A 2B", lines[1])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestCSVExporterMissingCellsStayEmpty(t *testing.T) {
	payload, err := NewCSVExporter().Render(Dataset{
		Headers: []string{"Date", "Room"},
		Rows:    []map[string]string{{"Date": "2025-01-11"}},
	})
	require.NoError(t, err)
	assert.Contains(t, string(payload), "2025-01-11,")
}

func TestPDFExporterRender(t *testing.T) {
	payload, err := NewPDFExporter().Render(planningDataset(), "Planning DST", "2 sittings")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}

func TestPDFExporterRequiresHeaders(t *testing.T) {
	_, err := NewPDFExporter().Render(Dataset{}, "Planning DST", "")
	require.Error(t, err)
}
