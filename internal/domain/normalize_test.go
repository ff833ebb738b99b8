package domain_test

import (
	"testing"
	"time"

	"github.com/couchcryptid/swim-data-etl/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var receivedAt = time.Date(2024, time.May, 24, 12, 35, 10, 123_000_000, time.UTC)

func testMetadata() domain.Metadata {
	return domain.Metadata{
		ReceivedAt:  receivedAt,
		MessageID:   "ID:broker-1:42",
		Destination: "/topic/fixm/fpl",
	}
}

func text(t *testing.T, tree domain.Tree, key string) string {
	t.Helper()
	v, ok := tree.Get(key)
	require.True(t, ok, "missing key %q", key)
	return v.Text()
}

func TestNormalize_AddsReservedKeys(t *testing.T) {
	root := domain.NewObjectBuilder().SetText("gufi", "abc").Build()

	out, err := domain.Normalize(root, testMetadata())
	require.NoError(t, err)

	assert.Equal(t, []string{"gufi", "logTimestamp", "messageID", "messageDestination"}, out.Keys())
	assert.Equal(t, "2024-05-24T12:35:10.123Z", text(t, out, domain.KeyLogTimestamp))
	assert.Equal(t, "ID:broker-1:42", text(t, out, domain.KeyMessageID))
	assert.Equal(t, "/topic/fixm/fpl", text(t, out, domain.KeyMessageDestination))
}

func TestNormalize_NeverOverwritesDecoderKeys(t *testing.T) {
	root := domain.NewObjectBuilder().
		SetText("id", "env-1").
		SetText(domain.KeyLogTimestamp, "decoder-owned").
		Build()

	out, err := domain.Normalize(root, testMetadata())
	require.NoError(t, err)
	assert.Equal(t, "decoder-owned", text(t, out, domain.KeyLogTimestamp))
}

func TestNormalize_Idempotent(t *testing.T) {
	root := domain.NewObjectBuilder().SetText("station", "WSSS").Build()

	once, err := domain.Normalize(root, testMetadata())
	require.NoError(t, err)
	twice, err := domain.Normalize(once, testMetadata())
	require.NoError(t, err)

	if diff := cmp.Diff(once, twice, cmp.AllowUnexported(domain.Tree{}, domain.Field{})); diff != "" {
		t.Fatalf("second normalization changed the record (-once +twice):\n%s", diff)
	}
}

func TestNormalize_SkipsEmptyMetadata(t *testing.T) {
	out, err := domain.Normalize(domain.EmptyObject(), domain.Metadata{ReceivedAt: receivedAt})
	require.NoError(t, err)
	assert.Equal(t, []string{domain.KeyLogTimestamp}, out.Keys())
}

func TestNormalize_ZeroReceivedAtUsesClock(t *testing.T) {
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2025, time.January, 2, 3, 4, 5, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })

	out, err := domain.Normalize(domain.EmptyObject(), domain.Metadata{})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-02T03:04:05.000Z", text(t, out, domain.KeyLogTimestamp))
}

func TestNormalize_RejectsNonObject(t *testing.T) {
	_, err := domain.Normalize(domain.Scalar("x"), testMetadata())
	require.ErrorIs(t, err, domain.ErrSerialization)

	_, err = domain.Normalize(domain.Array(), testMetadata())
	require.ErrorIs(t, err, domain.ErrSerialization)
}

func TestReconcileReportTime(t *testing.T) {
	cases := []struct {
		name     string
		received time.Time
		stamp    string
		want     time.Time
	}{
		{
			name:     "same day takes report clock time",
			received: time.Date(2024, time.May, 24, 12, 40, 0, 0, time.UTC),
			stamp:    "241230Z",
			want:     time.Date(2024, time.May, 24, 12, 30, 0, 0, time.UTC),
		},
		{
			name:     "report day earlier in month",
			received: time.Date(2024, time.May, 25, 0, 5, 0, 0, time.UTC),
			stamp:    "242355Z",
			want:     time.Date(2024, time.May, 24, 23, 55, 0, 0, time.UTC),
		},
		{
			name:     "report from end of previous month",
			received: time.Date(2024, time.May, 1, 0, 10, 0, 0, time.UTC),
			stamp:    "302350Z",
			want:     time.Date(2024, time.April, 30, 23, 50, 0, 0, time.UTC),
		},
		{
			name:     "report day well before ingest day stays in ingest month",
			received: time.Date(2024, time.May, 28, 10, 0, 0, 0, time.UTC),
			stamp:    "020930Z",
			want:     time.Date(2024, time.May, 2, 9, 30, 0, 0, time.UTC),
		},
		{
			name:     "report day ahead of ingest day uses previous month",
			received: time.Date(2024, time.May, 15, 10, 0, 0, 0, time.UTC),
			stamp:    "280930Z",
			want:     time.Date(2024, time.April, 28, 9, 30, 0, 0, time.UTC),
		},
		{
			name:     "report day one ahead is never in the future",
			received: time.Date(2024, time.May, 24, 23, 59, 0, 0, time.UTC),
			stamp:    "250001Z",
			want:     time.Date(2024, time.April, 25, 0, 1, 0, 0, time.UTC),
		},
		{
			name:     "previous month crosses year boundary",
			received: time.Date(2024, time.January, 3, 1, 0, 0, 0, time.UTC),
			stamp:    "312300Z",
			want:     time.Date(2023, time.December, 31, 23, 0, 0, 0, time.UTC),
		},
		{
			name:     "day missing from previous month falls back",
			received: time.Date(2024, time.March, 5, 8, 0, 0, 0, time.UTC),
			stamp:    "301200Z",
			want:     time.Date(2024, time.March, 5, 8, 0, 0, 0, time.UTC),
		},
		{
			name:     "eight character stamp uses first six digits",
			received: time.Date(2024, time.May, 24, 12, 40, 0, 0, time.UTC),
			stamp:    "2412345Z",
			want:     time.Date(2024, time.May, 24, 12, 34, 0, 0, time.UTC),
		},
		{
			name:     "malformed stamp falls back",
			received: receivedAt,
			stamp:    "24AB30Z",
			want:     receivedAt,
		},
		{
			name:     "out of range hour falls back",
			received: receivedAt,
			stamp:    "242599Z",
			want:     receivedAt,
		},
		{
			name:     "absent stamp falls back",
			received: receivedAt,
			stamp:    "",
			want:     receivedAt,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, domain.ReconcileReportTime(tc.received, tc.stamp))
		})
	}
}

func TestNormalizeWithReportTime(t *testing.T) {
	root := domain.NewObjectBuilder().SetText("dateTime", "231200Z").Build()

	out, err := domain.NormalizeWithReportTime(root, testMetadata(), "dateTime")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-23T12:00:00.000Z", text(t, out, domain.KeyLogTimestamp))

	out, err = domain.NormalizeWithReportTime(domain.EmptyObject(), testMetadata(), "dateTime")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-24T12:35:10.123Z", text(t, out, domain.KeyLogTimestamp))
}
