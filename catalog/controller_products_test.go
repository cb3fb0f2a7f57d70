package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreatePayload() CreateProductPayload {
	return CreateProductPayload{
		Name:        "Noir Intense",
		Description: "Amber woody eau de parfum",
		Price:       49.9,
		SizeML:      50,
	}
}

func TestCreateProductPayloadValidation(t *testing.T) {
	require.NoError(t, validCreatePayload().Validate())

	payload := validCreatePayload()
	payload.Name = ""
	assert.Error(t, payload.Validate())

	payload = validCreatePayload()
	payload.Price = -1
	assert.Error(t, payload.Validate())
}

func TestCreateProductPayloadRejectsBadInspirationReference(t *testing.T) {
	payload := validCreatePayload()
	payload.InspiredFrom = []string{"not-a-uuid"}

	err := payload.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a valid UUID")
}

func TestCreateProductPayloadAcceptsUUIDReferences(t *testing.T) {
	payload := validCreatePayload()
	payload.InspiredFrom = []string{uuid.NewString(), uuid.NewString()}

	require.NoError(t, payload.Validate())

	product, err := payload.toProduct()
	require.NoError(t, err)
	assert.Len(t, product.InspiredFrom, 2)
}

func TestCreateProductPayloadRejectsBadImageURL(t *testing.T) {
	payload := validCreatePayload()
	payload.Images = []string{"::not-a-url::"}

	assert.Error(t, payload.Validate())
}
