package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, GetHTTPStatus("AUTH_FAILED"))
	assert.Equal(t, http.StatusBadGateway, GetHTTPStatus("UPSTREAM_FAILED"))
	assert.Equal(t, http.StatusNotFound, GetHTTPStatus("NOT_FOUND"))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus("NO_SUCH_CODE"))
}

func TestListRequestNormalize(t *testing.T) {
	r := ListRequest{}
	r.Normalize()
	assert.Equal(t, 1, r.Page)
	assert.Equal(t, 20, r.PageSize)
	assert.Equal(t, 0, r.Offset())

	r = ListRequest{Page: 3, PageSize: 500}
	r.Normalize()
	assert.Equal(t, 100, r.PageSize)
	assert.Equal(t, 200, r.Offset())
}
