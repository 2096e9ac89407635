package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyceo/charge-api/internal/models"
	"github.com/lyceo/charge-api/pkg/config"
	appErrors "github.com/lyceo/charge-api/pkg/errors"
)

type dstRepoMock struct {
	listResp  []models.DST
	listErr   error
	createErr error
	deleteErr error

	created   []models.DST
	deletedID string
}

func (m *dstRepoMock) List(ctx context.Context) ([]models.DST, error) {
	return m.listResp, m.listErr
}

func (m *dstRepoMock) Create(ctx context.Context, dst *models.DST) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, *dst)
	return nil
}

func (m *dstRepoMock) Delete(ctx context.Context, id string) error {
	m.deletedID = id
	return m.deleteErr
}

func newDSTServiceForTest(repo *dstRepoMock) *DSTService {
	workload := NewWorkloadService(config.WorkloadConfig{}, nil)
	schedule := NewDSTScheduleService(config.DSTConfig{}, workload, nil)
	parser := NewDSTParserService(nil, func() time.Time { return time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC) })
	return NewDSTService(repo, schedule, parser, nil, nil, nil, nil, nil)
}

func TestDSTCreateNormalisesClasses(t *testing.T) {
	repo := &dstRepoMock{}
	svc := newDSTServiceForTest(repo)

	dst, err := svc.Create(context.Background(), CreateDSTRequest{
		Date:    "2025-01-11",
		Subject: "MATHEMATIQUES",
		Classes: []string{" 2a", "2b "},
	})

	require.NoError(t, err)
	assert.NotEmpty(t, dst.ID)
	assert.Equal(t, []string{"2A", "2B"}, []string(dst.Classes))
	assert.Equal(t, "manual", dst.Source)
	require.Len(t, repo.created, 1)
}

func TestDSTCreateRejectsMissingFields(t *testing.T) {
	svc := newDSTServiceForTest(&dstRepoMock{})

	_, err := svc.Create(context.Background(), CreateDSTRequest{Subject: "SVT"})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDSTCreateRejectsBadDate(t *testing.T) {
	svc := newDSTServiceForTest(&dstRepoMock{})

	_, err := svc.Create(context.Background(), CreateDSTRequest{
		Date:    "samedi prochain",
		Subject: "SVT",
		Classes: []string{"2A"},
	})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDSTImportPersistsExtractedRecords(t *testing.T) {
	repo := &dstRepoMock{}
	svc := newDSTServiceForTest(repo)
	text := `DST SAMEDI 11 janvier 2025
2A MATHS salle B12
2B SVT`

	records, err := svc.Import(context.Background(), text)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Len(t, repo.created, 2)
	for _, r := range records {
		assert.Equal(t, "smart_import", r.Source)
		assert.Equal(t, "2025-01-11", r.Date)
	}
}

func TestDSTImportEmptyTextIsValidationError(t *testing.T) {
	svc := newDSTServiceForTest(&dstRepoMock{})

	_, err := svc.Import(context.Background(), "   \n  ")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDSTImportNothingExtracted(t *testing.T) {
	repo := &dstRepoMock{}
	svc := newDSTServiceForTest(repo)

	_, err := svc.Import(context.Background(), "Reunion pedagogique du trimestre")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrEmptyExtraction.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
}

func TestDSTDelete(t *testing.T) {
	repo := &dstRepoMock{}
	svc := newDSTServiceForTest(repo)

	require.NoError(t, svc.Delete(context.Background(), "d1"))
	assert.Equal(t, "d1", repo.deletedID)
}

func TestDSTAuditFlagsConsecutiveRun(t *testing.T) {
	repo := &dstRepoMock{
		listResp: []models.DST{
			{ID: "d1", Date: "2025-01-11", Subject: "MATHEMATIQUES"},
			{ID: "d2", Date: "2025-01-18", Subject: "SVT"},
			{ID: "d3", Date: "2025-01-25", Subject: "ANGLAIS"},
		},
	}
	svc := newDSTServiceForTest(repo)

	audit, err := svc.Audit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, audit.Total)
	assert.True(t, audit.HasHighSeverity)
}

func TestDSTSuggestions(t *testing.T) {
	repo := &dstRepoMock{
		listResp: []models.DST{{ID: "d1", Date: "2025-03-08", Subject: "MATHEMATIQUES"}},
	}
	svc := newDSTServiceForTest(repo)

	suggestions, err := svc.Suggestions(context.Background(), time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), 2)

	require.NoError(t, err)
	require.Len(t, suggestions, 3)
	for _, s := range suggestions {
		assert.NotEqual(t, "2025-03-08", s.Date)
	}
}

func TestDSTExportCSV(t *testing.T) {
	repo := &dstRepoMock{
		listResp: []models.DST{
			{ID: "d1", Date: "2025-01-11", Subject: "MATHEMATIQUES", Classes: []string{"2A"}, StartTime: "08:00", EndTime: "10:00", Room: "B12"},
		},
	}
	svc := newDSTServiceForTest(repo)

	payload, filename, err := svc.Export(context.Background(), "csv")

	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(filename, ".csv"))
	body := string(payload)
	assert.Contains(t, body, "Date,Subject,Classes,Start,End,Room")
	assert.Contains(t, body, "2025-01-11,MATHEMATIQUES,2A,08:00,10:00,B12")
}

func TestDSTExportDefaultsToPDF(t *testing.T) {
	repo := &dstRepoMock{
		listResp: []models.DST{{ID: "d1", Date: "2025-01-11", Subject: "SVT", Classes: []string{"2A"}}},
	}
	svc := newDSTServiceForTest(repo)

	payload, filename, err := svc.Export(context.Background(), "")

	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(filename, ".pdf"))
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}

func TestDSTExportRejectsUnknownFormat(t *testing.T) {
	svc := newDSTServiceForTest(&dstRepoMock{})

	_, _, err := svc.Export(context.Background(), "xlsx")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDSTListPropagatesFailure(t *testing.T) {
	svc := newDSTServiceForTest(&dstRepoMock{listErr: errors.New("db down")})

	_, err := svc.List(context.Background())

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}
