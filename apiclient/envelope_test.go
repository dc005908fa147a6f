package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listing struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

func TestDecodeList(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		keys      []string
		wantIDs   []int
		wantCount int
		wantNext  string
		wantErr   error
	}{
		{
			name:    "bare array",
			body:    `[{"id":1},{"id":2}]`,
			wantIDs: []int{1, 2}, wantCount: 2,
		},
		{
			name:    "paginated",
			body:    `{"count":42,"next":"http://api/properties/?page=2","previous":null,"results":[{"id":3}]}`,
			wantIDs: []int{3}, wantCount: 42, wantNext: "http://api/properties/?page=2",
		},
		{
			name:    "array under endpoint key",
			body:    `{"properties":[{"id":4},{"id":5}]}`,
			keys:    []string{"properties"},
			wantIDs: []int{4, 5}, wantCount: 2,
		},
		{
			name:    "array under default key",
			body:    `{"data":[{"id":6}]}`,
			wantIDs: []int{6}, wantCount: 1,
		},
		{
			name:    "paginated under key",
			body:    `{"furniture":{"count":9,"results":[{"id":7}]}}`,
			keys:    []string{"furniture"},
			wantIDs: []int{7}, wantCount: 9,
		},
		{
			name:    "endpoint key wins over default key",
			body:    `{"data":[{"id":1}],"rentals":[{"id":8}]}`,
			keys:    []string{"rentals"},
			wantIDs: []int{8}, wantCount: 1,
		},
		{
			name:    "null under key is empty",
			body:    `{"properties":null}`,
			keys:    []string{"properties"},
			wantIDs: nil,
		},
		{
			name:    "empty array",
			body:    ` [] `,
			wantIDs: nil,
		},
		{
			name:    "unknown shape",
			body:    `{"detail":"ok"}`,
			wantErr: ErrUnknownEnvelope,
		},
		{
			name:    "scalar",
			body:    `"nope"`,
			wantErr: ErrUnknownEnvelope,
		},
		{
			name:    "empty body",
			body:    "",
			wantErr: ErrUnknownEnvelope,
		},
		{
			name:    "doubly nested object is not followed",
			body:    `{"items":{"items":{"results":[]}}}`,
			wantErr: ErrUnknownEnvelope,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := DecodeList[listing]([]byte(tt.body), tt.keys...)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			var ids []int
			for _, item := range page.Items {
				ids = append(ids, item.ID)
			}
			require.Equal(t, tt.wantIDs, ids)
			require.Equal(t, tt.wantCount, page.Count)
			require.Equal(t, tt.wantNext, page.Next)
		})
	}
}

func TestDecodeListBadItems(t *testing.T) {
	_, err := DecodeList[listing]([]byte(`[{"id":"one"}]`))
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrUnknownEnvelope)
}

func TestGetList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/properties/", r.URL.Path)
		assert.Equal(t, "Goa", r.URL.Query().Get("city"))
		_, _ = w.Write([]byte(`{"properties":[{"id":1,"title":"Beach house"}]}`))
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL, RefreshPath: refreshPath}, nil)
	page, err := GetList[listing](context.Background(), client, "/api/properties/", url.Values{"city": {"Goa"}}, "properties")
	require.NoError(t, err)
	require.Equal(t, []listing{{ID: 1, Title: "Beach house"}}, page.Items)
}

func TestGetListUnknownEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total":0}`))
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL}, nil)
	_, err := GetList[listing](context.Background(), client, "/api/rentals/", nil)
	require.ErrorIs(t, err, ErrUnknownEnvelope)
}
