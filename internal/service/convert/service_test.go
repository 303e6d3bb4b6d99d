package convert

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aggcsv/internal/config"
	"aggcsv/internal/domain"
)

func newTestService(t *testing.T, mutate func(*config.Config)) *ConvertService {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, cfg.Validate())
	return NewConvertService(cfg, slog.New(slog.DiscardHandler))
}

func TestConvert_Scenarios(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "A sparse columns",
			in:   `{"result": [{"a":1},{"b":2},{"c":3}], "ok":1}`,
			want: "a,b,c\n1,,\n,2,\n,,3\n",
		},
		{
			name: "B list field",
			in:   `{"result": [{"a":1},{"b":2},{"c":[3,4,5]}], "ok":1}`,
			want: "a,b,c\n1,,\n,2,\n,,\"3,4,5\"\n",
		},
		{
			name: "C separator in key",
			in:   `{"result":[{"a":1},{"b":2},{"c,d,e":3}], "ok":1}`,
			want: "\"c,d,e\",a,b\n,1,\n,,2\n3,,\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			sum, err := newTestService(t, nil).Convert(strings.NewReader(tt.in), &out)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.String())
			assert.Equal(t, 3, sum.Columns)
			assert.Equal(t, 3, sum.Rows)
		})
	}
}

func TestConvert_Failures(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		check   func(t *testing.T, err error)
		wantMsg string
	}{
		{
			name:    "D empty result",
			in:      `{"result": [], "ok":1}`,
			wantMsg: "aggregation returned no results",
			check: func(t *testing.T, err error) {
				var target *domain.EmptyResultError
				assert.True(t, errors.As(err, &target))
			},
		},
		{
			name:    "E ok zero",
			in:      `{"result":[{"a":1}], "ok":0}`,
			wantMsg: "aggregation ok flag was 0",
			check: func(t *testing.T, err error) {
				var target *domain.AggregationFailedError
				assert.True(t, errors.As(err, &target))
			},
		},
		{
			name:    "malformed",
			in:      `{"result": [`,
			wantMsg: "input could not be decoded as JSON",
			check: func(t *testing.T, err error) {
				var target *domain.MalformedInputError
				assert.True(t, errors.As(err, &target))
			},
		},
		{
			name:    "not an envelope",
			in:      `[1, 2, 3]`,
			wantMsg: "JSON doesn't match aggregation schema",
			check: func(t *testing.T, err error) {
				var target *domain.SchemaMismatchError
				assert.True(t, errors.As(err, &target))
			},
		},
		{
			name:    "nested",
			in:      `{"result": [{"a": {"b": 1}}], "ok": 1}`,
			wantMsg: "aggregation results are nested",
			check: func(t *testing.T, err error) {
				var target *domain.NestedResultError
				assert.True(t, errors.As(err, &target))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			sum, err := newTestService(t, nil).Convert(strings.NewReader(tt.in), &out)
			require.Error(t, err)
			assert.Nil(t, sum)
			assert.Empty(t, out.String(), "no partial output")
			assert.Contains(t, err.Error(), tt.wantMsg)
			tt.check(t, err)
		})
	}
}

func TestConvert_ShellTranscript(t *testing.T) {
	in := "MongoDB shell version: 2.4.9\n" +
		"connecting to: reports\n" +
		"{\n" +
		"\t\"result\" : [\n" +
		"\t\t{ \"_id\" : ObjectId(\"5311c7e5f0b2c4d7a1e3b9a1\"), \"total\" : NumberLong(12), \"tags\" : [ \"x\", \"y\" ] },\n" +
		"\t\t{ \"_id\" : ObjectId(\"5311c7e5f0b2c4d7a1e3b9a2\"), \"total\" : NumberLong(9007199254740993) }\n" +
		"\t],\n" +
		"\t\"ok\" : 1\n" +
		"}\n" +
		"bye\n"

	var out bytes.Buffer
	sum, err := newTestService(t, nil).Convert(strings.NewReader(in), &out)
	require.NoError(t, err)

	want := "_id,tags,total\n" +
		"5311c7e5f0b2c4d7a1e3b9a1,\"x,y\",12\n" +
		"5311c7e5f0b2c4d7a1e3b9a2,,9007199254740993\n"
	assert.Equal(t, want, out.String())
	assert.Equal(t, 3, sum.BannersDropped)
	assert.Equal(t, 4, sum.WrappersRewritten)
}

func TestConvert_StrictRejectsTranscript(t *testing.T) {
	in := "connecting to: reports\n{\"result\": [{\"a\": 1}], \"ok\": 1}\n"
	svc := newTestService(t, func(c *config.Config) { c.StrictJSON = true })

	_, err := svc.Convert(strings.NewReader(in), &bytes.Buffer{})
	var target *domain.MalformedInputError
	require.True(t, errors.As(err, &target))
}

func TestConvert_ExtraBanners(t *testing.T) {
	in := "Server has startup warnings:\n{\"result\": [{\"a\": 1}], \"ok\": 1}\n"
	svc := newTestService(t, func(c *config.Config) { c.Banners = []string{"Server has startup warnings"} })

	var out bytes.Buffer
	_, err := svc.Convert(strings.NewReader(in), &out)
	require.NoError(t, err)
	assert.Equal(t, "a\n1\n", out.String())
}

func TestConvert_Separator(t *testing.T) {
	svc := newTestService(t, func(c *config.Config) { c.Separator = ';' })

	var out bytes.Buffer
	_, err := svc.Convert(strings.NewReader(`{"result": [{"a;b": "x,y", "c": [1, 2]}], "ok": 1}`), &out)
	require.NoError(t, err)
	assert.Equal(t, "\"a;b\";c\nx,y;\"1;2\"\n", out.String())
}

func TestConvert_UpstreamError(t *testing.T) {
	in := "Error: command failed: { \"ok\" : 0, \"errmsg\" : \"exception: bad query\" }\n"

	var out bytes.Buffer
	_, err := newTestService(t, nil).Convert(strings.NewReader(in), &out)
	require.Error(t, err)

	text, ok := UpstreamOutput(err)
	require.True(t, ok)
	assert.Equal(t, in, text)
	assert.Empty(t, out.String())

	_, ok = UpstreamOutput(errors.New("other"))
	assert.False(t, ok)
}

func TestConvert_BrokenPipe(t *testing.T) {
	_, err := newTestService(t, nil).Convert(
		strings.NewReader(`{"result": [{"a": 1}], "ok": 1}`),
		errWriter{err: syscall.EPIPE},
	)
	require.NoError(t, err)

	_, err = newTestService(t, nil).Convert(
		strings.NewReader(`{"result": [{"a": 1}], "ok": 1}`),
		errWriter{err: errors.New("disk full")},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write output: disk full")
}

type errWriter struct{ err error }

func (w errWriter) Write([]byte) (int, error) { return 0, w.err }

func TestConvert_ResidualWrapperWarnedOnce(t *testing.T) {
	var logs bytes.Buffer
	cfg := config.Default()
	svc := NewConvertService(cfg, slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn})))

	_, err := svc.Convert(strings.NewReader("{\"result\": [{\"n\": NumberLong(\"5\")}], \"ok\": 1}\n"), &bytes.Buffer{})
	var target *domain.MalformedInputError
	require.True(t, errors.As(err, &target))

	assert.Equal(t, 1, strings.Count(logs.String(), "level=WARN"), logs.String())
	assert.Contains(t, logs.String(), "line=1")
}
