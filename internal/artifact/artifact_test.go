package artifact

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleTable() *Table {
	return &Table{
		Columns: []string{"region", "order_count", "total_revenue"},
		Rows: [][]string{
			{"North", "2", "14250.00"},
			{"West", "2", "7700.50"},
			{"South", "1", "2750.00"},
		},
	}
}

func TestLocal_RoundTrip(t *testing.T) {
	for _, format := range []Format{FormatColumnar, FormatDelimited} {
		t.Run(string(format), func(t *testing.T) {
			st := NewLocal(t.TempDir())
			ctx := context.Background()

			ok, err := st.Exists(ctx, "regional")
			require.NoError(t, err)
			require.False(t, ok)

			loc, err := st.Save(ctx, "regional", sampleTable(), format)
			require.NoError(t, err)
			require.FileExists(t, loc)

			ok, err = st.Exists(ctx, "regional")
			require.NoError(t, err)
			require.True(t, ok)

			got, err := st.Load(ctx, "regional", format)
			require.NoError(t, err)
			require.Equal(t, sampleTable().Columns, got.Columns)
			require.Equal(t, sampleTable().Rows, got.Rows)
		})
	}
}

func TestLocal_NestedKey(t *testing.T) {
	st := NewLocal(t.TempDir())
	ctx := context.Background()

	loc, err := st.Save(ctx, "runs/2024-11/regional", sampleTable(), FormatDelimited)
	require.NoError(t, err)
	require.Equal(t, "regional.csv", filepath.Base(loc))

	ok, err := st.Exists(ctx, "runs/2024-11/regional")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestLocal_EmptyTable(t *testing.T) {
	st := NewLocal(t.TempDir())
	ctx := context.Background()
	empty := &Table{Columns: []string{"a", "b"}}

	for _, format := range []Format{FormatColumnar, FormatDelimited} {
		_, err := st.Save(ctx, "empty", empty, format)
		require.NoError(t, err)
		got, err := st.Load(ctx, "empty", format)
		require.NoError(t, err)
		require.Equal(t, empty.Columns, got.Columns)
		require.Empty(t, got.Rows)
	}
}

func TestSave_RejectsRaggedRows(t *testing.T) {
	st := NewLocal(t.TempDir())
	ragged := &Table{Columns: []string{"a", "b"}, Rows: [][]string{{"only one"}}}

	_, err := st.Save(context.Background(), "ragged", ragged, FormatDelimited)
	require.Error(t, err)
}

func TestLocal_LoadMissing(t *testing.T) {
	st := NewLocal(t.TempDir())

	_, err := st.Load(context.Background(), "nope", FormatColumnar)
	require.Error(t, err)
}

// objectStore is a minimal in-memory HTTP object store for Remote tests.
type objectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (o *objectStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch r.Method {
	case http.MethodPut:
		data, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		o.objects[r.URL.Path] = data
		w.WriteHeader(http.StatusCreated)
	case http.MethodGet:
		data, ok := o.objects[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write(data)
	case http.MethodHead:
		if _, ok := o.objects[r.URL.Path]; !ok {
			w.WriteHeader(http.StatusNotFound)
		}
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestRemote_RoundTrip(t *testing.T) {
	backend := &objectStore{objects: map[string][]byte{}}
	srv := httptest.NewServer(backend)
	defer srv.Close()

	st := NewRemote(srv.URL, "orderpulse", srv.Client())
	ctx := context.Background()

	ok, err := st.Exists(ctx, "regional")
	require.NoError(t, err)
	require.False(t, ok)

	loc, err := st.Save(ctx, "regional", sampleTable(), FormatColumnar)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(loc, "/orderpulse/regional.tab"))

	ok, err = st.Exists(ctx, "regional")
	require.NoError(t, err)
	require.True(t, ok)

	got, err := st.Load(ctx, "regional", FormatColumnar)
	require.NoError(t, err)
	require.Equal(t, sampleTable().Rows, got.Rows)
}

func TestRemote_LoadMissing(t *testing.T) {
	backend := &objectStore{objects: map[string][]byte{}}
	srv := httptest.NewServer(backend)
	defer srv.Close()

	st := NewRemote(srv.URL, "orderpulse", srv.Client())

	_, err := st.Load(context.Background(), "nope", FormatDelimited)
	require.Error(t, err)
	require.Contains(t, err.Error(), "404")
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("tabular-columnar")
	require.NoError(t, err)
	require.Equal(t, FormatColumnar, f)

	f, err = ParseFormat("delimited-text")
	require.NoError(t, err)
	require.Equal(t, FormatDelimited, f)

	_, err = ParseFormat("parquet")
	require.Error(t, err)
}
