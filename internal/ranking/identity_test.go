package ranking

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentityKey_Deterministic(t *testing.T) {
	k1 := IdentityKey("진미식당", 37.5665, 126.9780)
	k2 := IdentityKey("진미식당", 37.5665, 126.9780)
	assert.Equal(t, k1, k2)
}

func TestIdentityKey_InsensitiveToFloatNoise(t *testing.T) {
	// Le bruit sous le seuil d'arrondi à 4 décimales ne change pas la clé
	k1 := IdentityKey("진미식당", 37.56650001, 126.9780)
	k2 := IdentityKey("진미식당", 37.56649999, 126.9780)
	assert.Equal(t, k1, k2)
}

func TestIdentityKey_DistinguishesPlaces(t *testing.T) {
	k1 := IdentityKey("버거집", 37.5665, 126.9780)
	k2 := IdentityKey("버거집", 37.5666, 126.9780)
	k3 := IdentityKey("국밥집", 37.5665, 126.9780)
	assert.NotEqual(t, k1, k2)
	assert.NotEqual(t, k1, k3)
}

func TestIdentityKey_DegradesOnBadCoordinates(t *testing.T) {
	// Coordonnées invalides → clé stable par nom seul, jamais d'erreur
	k1 := IdentityKey("분식집", math.NaN(), math.Inf(1))
	k2 := IdentityKey("분식집", 0, 0)
	assert.Equal(t, k2, k1)
}

func TestIdentityKey_NegativeZero(t *testing.T) {
	assert.Equal(t,
		IdentityKey("x", 0.00001, 0),
		IdentityKey("x", -0.00001, 0))
}

func TestParseCoord(t *testing.T) {
	assert.Equal(t, 37.5665, ParseCoord(" 37.5665 "))
	assert.Equal(t, 0.0, ParseCoord("n/a"))
	assert.Equal(t, 0.0, ParseCoord(""))
}

func TestFranchiseKey_IgnoresLocation(t *testing.T) {
	assert.Equal(t, FranchiseKey(" 맘스터치 "), FranchiseKey("맘스터치"))
}
