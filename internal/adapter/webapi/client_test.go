package webapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/burenotti/nutrition_counselling/internal/domain/metabolic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, status int, body string, check func(r *http.Request)) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", time.Second, WithToken("secret"))
}

func TestClient_Retrieve(t *testing.T) {
	body := `{
		"@odata.etag": "W/\"1\"",
		"ur_bmr": 1650,
		"ur_tdee": null,
		"ur_targetcalories": 2100,
		"ur_activitylevel": 2,
		"ur_weight": 78,
		"ur_Member": {"ur_height": 175, "ur_age": 34, "ur_gender": 0}
	}`
	c := serve(t, http.StatusOK, body, func(r *http.Request) {
		assert.Equal(t, "/api/data/v9.2/ur_nutritioncounsellings(abc-1)", r.URL.Path)
		assert.Equal(t, "ur_bmr,ur_tdee,ur_targetcalories,ur_activitylevel,ur_weight", r.URL.Query().Get("$select"))
		assert.Equal(t, "ur_Member($select=ur_height,ur_age,ur_gender)", r.URL.Query().Get("$expand"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "4.0", r.Header.Get("OData-Version"))
	})

	raw, err := c.Retrieve(context.Background(), "abc-1", metabolic.DefaultFieldSpec())
	require.NoError(t, err)
	assert.Equal(t, 1650.0, *raw.BMR)
	assert.Nil(t, raw.TDEE)
	assert.Equal(t, 2, *raw.ActivityLevel)
	require.NotNil(t, raw.Member)
	assert.Equal(t, 34, *raw.Member.Age)
	assert.Equal(t, 0, *raw.Member.Gender)

	rec, err := metabolic.DeriveAndValidate(raw)
	require.NoError(t, err)
	assert.Equal(t, 2558.0, *rec.TDEE)
}

func TestClient_RetrieveWithoutMember(t *testing.T) {
	c := serve(t, http.StatusOK, `{"ur_bmr": 1500, "ur_Member": null}`, nil)
	raw, err := c.Retrieve(context.Background(), "abc-1", metabolic.DefaultFieldSpec())
	require.NoError(t, err)
	assert.Nil(t, raw.Member)
	assert.Nil(t, raw.ActivityLevel)
}

func TestClient_RetrieveErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"not found", http.StatusNotFound, `{"error":{}}`, metabolic.ErrRecordNotFound},
		{"forbidden", http.StatusForbidden, ``, metabolic.ErrAccessDenied},
		{"unauthorized", http.StatusUnauthorized, ``, metabolic.ErrAccessDenied},
		{"server error", http.StatusInternalServerError, `oops`, ErrUnexpectedResponse},
		{"bad json", http.StatusOK, `{"ur_bmr":`, ErrUnexpectedResponse},
		{"wrong type", http.StatusOK, `{"ur_activitylevel":"high"}`, ErrUnexpectedResponse},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := serve(t, tc.status, tc.body, nil)
			_, err := c.Retrieve(context.Background(), "abc-1", metabolic.DefaultFieldSpec())
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestClient_RetrieveEmptyBody(t *testing.T) {
	c := serve(t, http.StatusOK, `null`, nil)
	raw, err := c.Retrieve(context.Background(), "abc-1", metabolic.DefaultFieldSpec())
	require.NoError(t, err)
	assert.Nil(t, raw)

	c = serve(t, http.StatusNoContent, ``, nil)
	raw, err = c.Retrieve(context.Background(), "abc-1", metabolic.DefaultFieldSpec())
	require.NoError(t, err)
	assert.Nil(t, raw)
}
