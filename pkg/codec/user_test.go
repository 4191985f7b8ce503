package codec

import (
	"math/rand"
	"testing"

	"github.com/notarium/core/pkg/types"
	"github.com/stretchr/testify/require"
)

func randomUserAttributes(r *rand.Rand, mask uint64) *types.UserAttributes {
	a := &types.UserAttributes{}
	bit := 0
	next := func() bool {
		present := mask&(1<<uint(bit)) != 0
		bit++
		return present
	}
	if next() {
		a.DefaultLocationName = strPtr("Home")
	}
	if next() {
		a.DefaultLatitude = f64Ptr(r.Float64()*180 - 90)
	}
	if next() {
		a.DefaultLongitude = f64Ptr(r.Float64()*360 - 180)
	}
	if next() {
		a.PreactivationStatus = boolPtr(r.Intn(2) == 0)
	}
	if next() {
		a.ViewedPromotions = []string{"promo.a", "promo.b"}
	}
	if next() {
		a.IncomingEmailAddress = strPtr("user@m.evernote.com")
	}
	if next() {
		a.RecentMailedAddresses = []string{"a@example.com", "b@example.com"}
	}
	if next() {
		a.Comments = strPtr("note to self")
	}
	if next() {
		a.DateAgreedToTermsOfService = i64Ptr(r.Int63())
	}
	if next() {
		v := r.Int31()
		a.MaxReferrals = &v
	}
	if next() {
		v := r.Int31()
		a.ReferralCount = &v
	}
	if next() {
		a.RefererCode = strPtr("REF123")
	}
	if next() {
		a.SentEmailDate = i64Ptr(r.Int63())
	}
	if next() {
		v := r.Int31()
		a.SentEmailCount = &v
	}
	if next() {
		v := r.Int31()
		a.DailyEmailLimit = &v
	}
	if next() {
		a.EmailOptOutDate = i64Ptr(r.Int63())
	}
	if next() {
		a.PartnerEmailOptInDate = i64Ptr(r.Int63())
	}
	if next() {
		a.PreferredLanguage = strPtr("en")
	}
	if next() {
		a.PreferredCountry = strPtr("US")
	}
	if next() {
		a.ClipFullPage = boolPtr(r.Intn(2) == 0)
	}
	if next() {
		a.TwitterUserName = strPtr("jdoe")
	}
	if next() {
		a.TwitterID = strPtr("123456")
	}
	if next() {
		a.GroupName = strPtr("engineering")
	}
	if next() {
		a.RecognitionLanguage = strPtr("en")
	}
	if next() {
		a.ReferralProof = strPtr("proof-blob")
	}
	if next() {
		a.EducationalDiscount = boolPtr(r.Intn(2) == 0)
	}
	if next() {
		a.BusinessAddress = strPtr("123 Main St")
	}
	if next() {
		a.HideSponsorBilling = boolPtr(r.Intn(2) == 0)
	}
	if next() {
		a.TaxExempt = boolPtr(r.Intn(2) == 0)
	}
	if next() {
		a.UseEmailAutoFiling = boolPtr(r.Intn(2) == 0)
	}
	if next() {
		a.Reminder = strPtr("buy milk")
	}
	if next() {
		a.EmailAddressLastConfirmed = i64Ptr(r.Int63())
	}
	if next() {
		a.PasswordUpdated = i64Ptr(r.Int63())
	}
	return a
}

// TestUserAttributesRoundTrip samples the 33-bit presence space: full
// enumeration (2^33) is infeasible, so every single-bit-set and
// single-bit-cleared case is covered exactly, plus a batch of
// pseudo-random masks with a fixed seed for reproducibility.
func TestUserAttributesRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	allBits := uint64(1)<<uint(userAttributesFieldCount) - 1
	masks := []uint64{0, allBits}
	for i := 0; i < userAttributesFieldCount; i++ {
		masks = append(masks, uint64(1)<<uint(i))
		masks = append(masks, allBits&^(uint64(1)<<uint(i)))
	}
	for i := 0; i < 300; i++ {
		masks = append(masks, r.Uint64()&allBits)
	}

	for _, mask := range masks {
		a := randomUserAttributes(r, mask)
		encoded := EncodeUserAttributes(a)
		decoded, err := DecodeUserAttributes(encoded)
		require.NoError(t, err)
		require.Equal(t, a, decoded, "mask=%b", mask)

		reEncoded := EncodeUserAttributes(decoded)
		require.Equal(t, encoded, reEncoded, "re-encode must be byte-identical, mask=%b", mask)
	}
}

func TestUserAttributesApplicationData(t *testing.T) {
	a := &types.UserAttributes{
		Comments:                strPtr("vip"),
		ApplicationDataKeysOnly: []string{"k1"},
		ApplicationDataFullMap:  map[string]string{"plan": "business"},
	}
	encoded := EncodeUserAttributes(a)
	decoded, err := DecodeUserAttributes(encoded)
	require.NoError(t, err)
	require.Equal(t, a, decoded)
}

func TestEncodeUserAttributesNilIsEmpty(t *testing.T) {
	encoded := EncodeUserAttributes(nil)
	decoded, err := DecodeUserAttributes(encoded)
	require.NoError(t, err)
	require.Equal(t, &types.UserAttributes{}, decoded)
}
