package sources_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nandonunes77/pipeline-etl-olist/internal/etl"
	"github.com/nandonunes77/pipeline-etl-olist/internal/etl/sources"
)

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(b)
}

// ── Registry ──────────────────────────────────────────────

func TestRegistry_ListsBuiltinSources(t *testing.T) {
	var got []string
	for _, spec := range etl.ListSources() {
		got = append(got, spec.Type)
	}
	assert.Subset(t, got, []string{sources.TypeFile, sources.TypeHTTP, sources.TypeS3})
}

func TestRegistry_NewSource(t *testing.T) {
	src, err := etl.NewSource(context.Background(), sources.TypeFile, etl.SourceConfig{"dir": "data"})
	require.NoError(t, err)
	assert.Equal(t, "data", src.Location())

	_, err = etl.NewSource(context.Background(), sources.TypeFile, etl.SourceConfig{})
	assert.Error(t, err)

	_, err = etl.NewSource(context.Background(), "ftp", nil)
	assert.Error(t, err)
}

// ── File ──────────────────────────────────────────────────

func TestFileSource_Open(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "olist_orders_dataset.csv"), []byte("order_id\no1\n"), 0o644))

	src := sources.NewFileSource(dir)
	rc, err := src.Open(context.Background(), "olist_orders_dataset.csv")
	require.NoError(t, err)
	assert.Equal(t, "order_id\no1\n", readAll(t, rc))

	_, err = src.Open(context.Background(), "olist_customers_dataset.csv")
	assert.ErrorIs(t, err, etl.ErrInputMissing)
	assert.Contains(t, err.Error(), "olist_customers_dataset.csv")
}

// ── S3 ────────────────────────────────────────────────────

type fakeS3 struct {
	objects map[string]string
	keys    []string
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.keys = append(f.keys, *in.Key)
	body, ok := f.objects[*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestS3Source_Open(t *testing.T) {
	client := &fakeS3{objects: map[string]string{"raw/olist/olist_orders_dataset.csv": "order_id\n"}}
	src := sources.NewS3SourceWithClient(client, "lake", "/raw/olist/")

	assert.Equal(t, "s3://lake/raw/olist", src.Location())

	rc, err := src.Open(context.Background(), "olist_orders_dataset.csv")
	require.NoError(t, err)
	assert.Equal(t, "order_id\n", readAll(t, rc))
	assert.Equal(t, []string{"raw/olist/olist_orders_dataset.csv"}, client.keys)

	_, err = src.Open(context.Background(), "olist_customers_dataset.csv")
	assert.ErrorIs(t, err, etl.ErrInputMissing)
}

func TestS3Source_OtherErrorsPassThrough(t *testing.T) {
	src := sources.NewS3SourceWithClient(errS3{}, "lake", "")
	_, err := src.Open(context.Background(), "x.csv")
	require.Error(t, err)
	assert.False(t, errors.Is(err, etl.ErrInputMissing))
}

type errS3 struct{}

func (errS3) GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return nil, errors.New("access denied")
}

func TestS3Source_KeyWithoutPrefix(t *testing.T) {
	src := sources.NewS3SourceWithClient(&fakeS3{}, "lake", "")
	assert.Equal(t, "olist_orders_dataset.csv", src.Key("olist_orders_dataset.csv"))
	assert.Equal(t, "s3://lake", src.Location())
}

func TestNewS3Source_RequiresBucket(t *testing.T) {
	_, err := sources.NewS3Source(context.Background(), sources.S3Options{})
	assert.Error(t, err)
}

func TestParseS3URL(t *testing.T) {
	tests := []struct {
		in             string
		bucket, prefix string
		wantErr        bool
	}{
		{in: "s3://lake", bucket: "lake"},
		{in: "s3://lake/raw/olist/", bucket: "lake", prefix: "raw/olist"},
		{in: "https://lake/raw", wantErr: true},
		{in: "s3:///raw", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			bucket, prefix, err := sources.ParseS3URL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.bucket, bucket)
			assert.Equal(t, tt.prefix, prefix)
		})
	}
}

// ── HTTP ──────────────────────────────────────────────────

func TestHTTPSource_Open(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer t0k" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/exports/olist_orders_dataset.csv":
			io.WriteString(w, "order_id\no1\n")
		case "/exports/broken.csv":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src, err := sources.NewHTTPSource(srv.URL+"/exports", map[string]string{"Authorization": "Bearer t0k"}, srv.Client())
	require.NoError(t, err)

	rc, err := src.Open(context.Background(), "olist_orders_dataset.csv")
	require.NoError(t, err)
	assert.Equal(t, "order_id\no1\n", readAll(t, rc))

	_, err = src.Open(context.Background(), "olist_customers_dataset.csv")
	assert.ErrorIs(t, err, etl.ErrInputMissing)

	_, err = src.Open(context.Background(), "broken.csv")
	require.Error(t, err)
	assert.False(t, errors.Is(err, etl.ErrInputMissing))
}

func TestNewHTTPSource_Validates(t *testing.T) {
	_, err := sources.NewHTTPSource("", nil, nil)
	assert.Error(t, err)
	_, err = sources.NewHTTPSource("ftp://files", nil, nil)
	assert.Error(t, err)
}

func TestHTTPSource_FactoryParsesHeaders(t *testing.T) {
	src, err := etl.NewSource(context.Background(), sources.TypeHTTP, etl.SourceConfig{
		"baseUrl": "https://files.example.com/olist",
		"headers": `{"X-Token": "abc"}`,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://files.example.com/olist/", src.Location())

	_, err = etl.NewSource(context.Background(), sources.TypeHTTP, etl.SourceConfig{
		"baseUrl": "https://files.example.com", "headers": "{not json",
	})
	assert.Error(t, err)
}
