package application

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	hazardDomain "github.com/roadwatch/service-navigation/internal/domain/hazard"
	"github.com/roadwatch/service-navigation/internal/platform/domain"
	"github.com/roadwatch/service-navigation/internal/proto/events"
	"github.com/roadwatch/service-navigation/internal/storage"
)

type hazardFixture struct {
	svc     *HazardService
	photos  *PhotoService
	repo    *memHazards
	photoDB *memPhotos
	store   *memStore
	pub     *recordingPublisher
}

func newHazardFixture() *hazardFixture {
	f := &hazardFixture{
		repo:    newMemHazards(),
		photoDB: &memPhotos{},
		store:   newMemStore(),
		pub:     &recordingPublisher{},
	}
	logger := zap.NewNop()
	f.repo.covers = f.photoDB
	f.svc = NewHazardService(f.repo, f.store, hazardDomain.NewStandardAdvisoryPolicy(), f.pub, logger)
	f.photos = NewPhotoService(f.photoDB, f.repo, f.store, logger)
	return f
}

func (f *hazardFixture) report(t *testing.T, typ string, lat, lng float64) *HazardDTO {
	t.Helper()
	dto, err := f.svc.ReportHazard(context.Background(), uuid.New(), ReportHazardRequest{
		Type:      typ,
		Latitude:  ptr(lat),
		Longitude: ptr(lng),
	}, nil)
	require.NoError(t, err)
	return dto
}

func TestReportHazard_FillsAdvisoryDefaults(t *testing.T) {
	f := newHazardFixture()

	dto := f.report(t, "pothole", 14.69, -17.44)

	assert.Equal(t, "pothole", dto.Type)
	assert.Equal(t, "reported", dto.Status)
	assert.NotEmpty(t, dto.Label)
	assert.NotEmpty(t, dto.Precaution)
	require.NotNil(t, dto.RecommendedSpeedKmh)
	assert.Equal(t, 30, *dto.RecommendedSpeedKmh)
	assert.Empty(t, dto.PhotoURL)

	assert.Equal(t, []string{events.HazardReported}, f.pub.types())
	assert.Equal(t, []string{events.TopicHazardEvents}, f.pub.topics)
}

func TestReportHazard_KeepsReporterAdvisory(t *testing.T) {
	f := newHazardFixture()

	dto, err := f.svc.ReportHazard(context.Background(), uuid.New(), ReportHazardRequest{
		Type:                "speed_bump",
		Label:               "Bump near school",
		Latitude:            ptr(14.7),
		Longitude:           ptr(-17.4),
		Precaution:          "Crawl",
		RecommendedSpeedKmh: ptr(10),
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Bump near school", dto.Label)
	assert.Equal(t, "Crawl", dto.Precaution)
	assert.Equal(t, 10, *dto.RecommendedSpeedKmh)
	assert.NotEmpty(t, dto.Consequence)
}

func TestReportHazard_WithPhoto(t *testing.T) {
	f := newHazardFixture()

	dto, err := f.svc.ReportHazard(context.Background(), uuid.New(), ReportHazardRequest{
		Type:      "police_checkpoint",
		Latitude:  ptr(14.7),
		Longitude: ptr(-17.4),
	}, &PhotoUpload{Filename: "x.jpg", ContentType: "image/jpeg", Content: strings.NewReader("jpeg-bytes")})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(dto.PhotoURL, "/uploads/hazards/"+dto.ID.String()+"/"))
	assert.Len(t, f.photoDB.photos, 1)
	assert.Len(t, f.store.files, 1)
}

func TestReportHazard_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		req    ReportHazardRequest
		upload *PhotoUpload
	}{
		{name: "unknown type", req: ReportHazardRequest{Type: "meteor", Latitude: ptr(1.0), Longitude: ptr(1.0)}},
		{name: "missing coordinates", req: ReportHazardRequest{Type: "pothole"}},
		{name: "latitude out of range", req: ReportHazardRequest{Type: "pothole", Latitude: ptr(91.0), Longitude: ptr(1.0)}},
		{name: "negative speed", req: ReportHazardRequest{Type: "pothole", Latitude: ptr(1.0), Longitude: ptr(1.0), RecommendedSpeedKmh: ptr(-5)}},
		{
			name:   "unsupported photo",
			req:    ReportHazardRequest{Type: "pothole", Latitude: ptr(1.0), Longitude: ptr(1.0)},
			upload: &PhotoUpload{ContentType: "application/pdf", Content: strings.NewReader("%PDF")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHazardFixture()
			_, err := f.svc.ReportHazard(context.Background(), uuid.New(), tt.req, tt.upload)

			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Empty(t, f.repo.hazards)
			assert.Empty(t, f.store.files)
			assert.Empty(t, f.pub.events)
		})
	}
}

func TestReportHazard_FailedSaveLeavesNothingBehind(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *hazardFixture)
	}{
		{"hazard row", func(f *hazardFixture) { f.repo.err = errors.New("db down") }},
		{"photo row", func(f *hazardFixture) { f.photoDB.err = errors.New("db down") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHazardFixture()
			tt.setup(f)

			_, err := f.svc.ReportHazard(context.Background(), uuid.New(), ReportHazardRequest{
				Type:      "pothole",
				Latitude:  ptr(14.7),
				Longitude: ptr(-17.4),
			}, &PhotoUpload{Filename: "x.jpg", ContentType: "image/jpeg", Content: strings.NewReader("jpeg-bytes")})
			require.Error(t, err)

			assert.Empty(t, f.repo.hazards, "no hazard without its photo")
			assert.Empty(t, f.photoDB.photos)
			assert.Empty(t, f.store.files, "stored file is removed")
			assert.Empty(t, f.pub.events)
		})
	}
}

func TestReportHazard_PublishFailureDoesNotFail(t *testing.T) {
	f := newHazardFixture()
	f.pub.err = errors.New("broker down")

	dto := f.report(t, "other", 1, 1)
	assert.Contains(t, f.repo.hazards, dto.ID)
}

func TestFindNearby(t *testing.T) {
	f := newHazardFixture()
	far := f.report(t, "pothole", 14.80, -17.44)
	near := f.report(t, "pothole", 14.6905, -17.44)
	mid := f.report(t, "speed_bump", 14.695, -17.44)

	_, err := f.svc.Moderate(context.Background(), mid.ID, ActionReject, "duplicate")
	require.NoError(t, err)

	got, err := f.svc.FindNearby(context.Background(), 14.69, -17.44, 2000)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, near.ID, got[0].ID)
	require.NotNil(t, got[0].DistanceMeters)
	assert.InDelta(t, 55, *got[0].DistanceMeters, 5)
	assert.NotEqual(t, far.ID, got[0].ID)
}

func TestFindNearby_Validation(t *testing.T) {
	f := newHazardFixture()
	var ve *domain.ValidationError

	_, err := f.svc.FindNearby(context.Background(), 100, 0, 10)
	assert.ErrorAs(t, err, &ve)

	_, err = f.svc.FindNearby(context.Background(), 0, 0, maxNearbyRadiusMeters+1)
	assert.ErrorAs(t, err, &ve)

	got, err := f.svc.FindNearby(context.Background(), 0, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestModerate(t *testing.T) {
	f := newHazardFixture()
	h := f.report(t, "pothole", 1, 1)

	dto, err := f.svc.Moderate(context.Background(), h.ID, ActionVerify, "confirmed by patrol")
	require.NoError(t, err)
	assert.Equal(t, "verified", dto.Status)
	assert.Equal(t, "confirmed by patrol", dto.StatusNote)
	assert.Equal(t, h.Version+1, dto.Version)

	dto, err = f.svc.Moderate(context.Background(), h.ID, ActionResolve, "")
	require.NoError(t, err)
	assert.Equal(t, "resolved", dto.Status)

	_, err = f.svc.Moderate(context.Background(), h.ID, ActionVerify, "")
	var ise *domain.InvalidStateError
	assert.ErrorAs(t, err, &ise)

	assert.Equal(t, []string{
		events.HazardReported,
		events.HazardStatusChanged,
		events.HazardStatusChanged,
	}, f.pub.types())
}

func TestModerate_Errors(t *testing.T) {
	f := newHazardFixture()
	h := f.report(t, "pothole", 1, 1)

	_, err := f.svc.Moderate(context.Background(), h.ID, ModerationAction("burn"), "")
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = f.svc.Moderate(context.Background(), uuid.New(), ActionVerify, "")
	var nf *domain.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestGetHazardStats(t *testing.T) {
	f := newHazardFixture()
	f.report(t, "pothole", 1, 1)
	f.report(t, "pothole", 2, 2)
	h := f.report(t, "speed_bump", 3, 3)
	_, err := f.svc.Moderate(context.Background(), h.ID, ActionVerify, "")
	require.NoError(t, err)

	stats, err := f.svc.GetHazardStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, map[string]int64{"reported": 2, "verified": 1}, stats.ByStatus)
	assert.Equal(t, map[string]int64{"pothole": 2, "speed_bump": 1}, stats.ByType)
}

func TestUploadPhoto(t *testing.T) {
	f := newHazardFixture()
	h := f.report(t, "pothole", 1, 1)
	uploader := uuid.New()

	dto, err := f.photos.UploadPhoto(context.Background(), h.ID, uploader,
		PhotoUpload{ContentType: "image/png", Content: strings.NewReader("png")}, "from the north")
	require.NoError(t, err)
	assert.Equal(t, uploader, dto.UploaderID)
	assert.Equal(t, int64(3), dto.SizeBytes)
	assert.Equal(t, "from the north", dto.Caption)

	stored, err := f.svc.GetHazard(context.Background(), h.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.PhotoURL, stored.PhotoURL, "first photo becomes the cover")

	second, err := f.photos.UploadPhoto(context.Background(), h.ID, uploader,
		PhotoUpload{ContentType: "image/webp", Content: strings.NewReader("webp")}, "")
	require.NoError(t, err)

	stored, err = f.svc.GetHazard(context.Background(), h.ID)
	require.NoError(t, err)
	assert.NotEqual(t, second.PhotoURL, stored.PhotoURL)

	photos, err := f.photos.GetHazardPhotos(context.Background(), h.ID)
	require.NoError(t, err)
	assert.Len(t, photos, 2)
}

func TestUploadPhoto_Errors(t *testing.T) {
	f := newHazardFixture()
	h := f.report(t, "pothole", 1, 1)
	upload := func() PhotoUpload {
		return PhotoUpload{ContentType: "image/jpeg", Content: strings.NewReader("x")}
	}

	_, err := f.photos.UploadPhoto(context.Background(), uuid.New(), uuid.New(), upload(), "")
	var nf *domain.NotFoundError
	assert.ErrorAs(t, err, &nf)

	f.store.err = storage.ErrTooLarge
	_, err = f.photos.UploadPhoto(context.Background(), h.ID, uuid.New(), upload(), "")
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)
	f.store.err = nil

	f.photoDB.err = errors.New("db down")
	_, err = f.photos.UploadPhoto(context.Background(), h.ID, uuid.New(), upload(), "")
	require.Error(t, err)
	assert.Empty(t, f.store.files, "file without a photo row is removed")
	f.photoDB.err = nil

	_, err = f.svc.Moderate(context.Background(), h.ID, ActionReject, "spam")
	require.NoError(t, err)
	_, err = f.photos.UploadPhoto(context.Background(), h.ID, uuid.New(), upload(), "")
	var ce *domain.ConflictError
	assert.ErrorAs(t, err, &ce)
}
