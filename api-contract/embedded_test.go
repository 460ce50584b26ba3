package apicontract_test

import (
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apicontract "github.com/studentalliance/catalog-gateway/api-contract"
)

func TestSpecIsValidOpenAPI(t *testing.T) {
	loader := openapi3.NewLoader()

	doc, err := loader.LoadFromData(apicontract.GetSpecBytes())
	require.NoError(t, err)

	err = doc.Validate(loader.Context)
	require.NoError(t, err)

	assert.NotNil(t, doc.Paths.Find("/admin/products"))
	assert.NotNil(t, doc.Paths.Find("/admin/products/drafts/{draftId}/submit"))
	assert.NotNil(t, doc.Paths.Find("/catalog/{category}"))
	assert.NotNil(t, doc.Paths.Find("/auth/login"))
}
