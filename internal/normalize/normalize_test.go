package normalize

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestOEM(t *testing.T) {
	assert.Equal(t, "gh82-20055a", OEM("  GH82-20055A "))
	assert.Equal(t, "a123", OEM("00A123"))
	assert.Equal(t, "", OEM("  "))
	assert.Equal(t, "", OEM("0000"))
}

func TestEAN(t *testing.T) {
	assert.Equal(t, "4006381333931", EAN("04006381333931"))
	assert.Equal(t, "4006381333931", EAN(" 4-006381 333931 "))
	assert.Equal(t, "", EAN("no digits here"))
}

func TestOrderNumber(t *testing.T) {
	assert.Equal(t, "sw-10001.2", OrderNumber(" SW-10001.2 "))
	assert.Equal(t, "0123", OrderNumber("0123"), "order numbers keep leading zeros")
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, IsNumeric("1001"))
	assert.True(t, IsNumeric("0"))
	assert.False(t, IsNumeric(""))
	assert.False(t, IsNumeric("10a1"))
	assert.False(t, IsNumeric("10 01"))
}

func TestIdempotence(t *testing.T) {
	inputs := []string{"  GH82-20055A ", "04006381333931", "0", "", "ABC-001", " 4-006 "}
	for _, in := range inputs {
		assert.Equal(t, OEM(OEM(in)), OEM(in), "OEM not idempotent for %q", in)
		assert.Equal(t, EAN(EAN(in)), EAN(in), "EAN not idempotent for %q", in)
		assert.Equal(t, OrderNumber(OrderNumber(in)), OrderNumber(in), "OrderNumber not idempotent for %q", in)
	}
}

func TestUUIDHexRoundTrip(t *testing.T) {
	id := uuid.New()
	hexStr := UUIDToHex(id)
	assert.Len(t, hexStr, 32)

	parsed, err := HexToUUID(hexStr)
	assert.NoError(t, err)
	assert.Equal(t, id, parsed)
}

func TestHexToUUIDInvalid(t *testing.T) {
	_, err := HexToUUID("not-hex")
	assert.Error(t, err)

	_, err = HexToUUID("abcd")
	assert.Error(t, err, "too short for a uuid")
}
