package codec

import (
	"fmt"

	"github.com/notarium/core/pkg/types"
)

// userAttributesFieldCount is the number of individually optional
// scalar/list fields declared on types.UserAttributes, in the same
// order EncodeUserAttributes writes them. It is derived here, once,
// rather than hardcoded at each call site.
const userAttributesFieldCount = 33

// EncodeUserAttributes serializes a into the deterministic wire
// format: a bitmask of which optional fields are present, each
// present field's value in declaration order, then the
// application-data section.
func EncodeUserAttributes(a *types.UserAttributes) []byte {
	if a == nil {
		a = &types.UserAttributes{}
	}
	w := &bitmaskWriter{}

	w.Bit(a.DefaultLocationName != nil)
	w.Bit(a.DefaultLatitude != nil)
	w.Bit(a.DefaultLongitude != nil)
	w.Bit(a.PreactivationStatus != nil)
	w.Bit(a.ViewedPromotions != nil)
	w.Bit(a.IncomingEmailAddress != nil)
	w.Bit(a.RecentMailedAddresses != nil)
	w.Bit(a.Comments != nil)
	w.Bit(a.DateAgreedToTermsOfService != nil)
	w.Bit(a.MaxReferrals != nil)
	w.Bit(a.ReferralCount != nil)
	w.Bit(a.RefererCode != nil)
	w.Bit(a.SentEmailDate != nil)
	w.Bit(a.SentEmailCount != nil)
	w.Bit(a.DailyEmailLimit != nil)
	w.Bit(a.EmailOptOutDate != nil)
	w.Bit(a.PartnerEmailOptInDate != nil)
	w.Bit(a.PreferredLanguage != nil)
	w.Bit(a.PreferredCountry != nil)
	w.Bit(a.ClipFullPage != nil)
	w.Bit(a.TwitterUserName != nil)
	w.Bit(a.TwitterID != nil)
	w.Bit(a.GroupName != nil)
	w.Bit(a.RecognitionLanguage != nil)
	w.Bit(a.ReferralProof != nil)
	w.Bit(a.EducationalDiscount != nil)
	w.Bit(a.BusinessAddress != nil)
	w.Bit(a.HideSponsorBilling != nil)
	w.Bit(a.TaxExempt != nil)
	w.Bit(a.UseEmailAutoFiling != nil)
	w.Bit(a.Reminder != nil)
	w.Bit(a.EmailAddressLastConfirmed != nil)
	w.Bit(a.PasswordUpdated != nil)

	if len(w.bits) != userAttributesFieldCount {
		panic(fmt.Sprintf("codec: UserAttributes field count drifted: got %d bits, want %d", len(w.bits), userAttributesFieldCount))
	}

	buf := getBuffer()
	defer putBuffer(buf)

	if a.DefaultLocationName != nil {
		writeString(buf, *a.DefaultLocationName)
	}
	if a.DefaultLatitude != nil {
		writeFloat64(buf, *a.DefaultLatitude)
	}
	if a.DefaultLongitude != nil {
		writeFloat64(buf, *a.DefaultLongitude)
	}
	if a.PreactivationStatus != nil {
		writeBool(buf, *a.PreactivationStatus)
	}
	if a.ViewedPromotions != nil {
		writeStringSlice(buf, a.ViewedPromotions)
	}
	if a.IncomingEmailAddress != nil {
		writeString(buf, *a.IncomingEmailAddress)
	}
	if a.RecentMailedAddresses != nil {
		writeStringSlice(buf, a.RecentMailedAddresses)
	}
	if a.Comments != nil {
		writeString(buf, *a.Comments)
	}
	if a.DateAgreedToTermsOfService != nil {
		writeInt64(buf, *a.DateAgreedToTermsOfService)
	}
	if a.MaxReferrals != nil {
		writeInt64(buf, int64(*a.MaxReferrals))
	}
	if a.ReferralCount != nil {
		writeInt64(buf, int64(*a.ReferralCount))
	}
	if a.RefererCode != nil {
		writeString(buf, *a.RefererCode)
	}
	if a.SentEmailDate != nil {
		writeInt64(buf, *a.SentEmailDate)
	}
	if a.SentEmailCount != nil {
		writeInt64(buf, int64(*a.SentEmailCount))
	}
	if a.DailyEmailLimit != nil {
		writeInt64(buf, int64(*a.DailyEmailLimit))
	}
	if a.EmailOptOutDate != nil {
		writeInt64(buf, *a.EmailOptOutDate)
	}
	if a.PartnerEmailOptInDate != nil {
		writeInt64(buf, *a.PartnerEmailOptInDate)
	}
	if a.PreferredLanguage != nil {
		writeString(buf, *a.PreferredLanguage)
	}
	if a.PreferredCountry != nil {
		writeString(buf, *a.PreferredCountry)
	}
	if a.ClipFullPage != nil {
		writeBool(buf, *a.ClipFullPage)
	}
	if a.TwitterUserName != nil {
		writeString(buf, *a.TwitterUserName)
	}
	if a.TwitterID != nil {
		writeString(buf, *a.TwitterID)
	}
	if a.GroupName != nil {
		writeString(buf, *a.GroupName)
	}
	if a.RecognitionLanguage != nil {
		writeString(buf, *a.RecognitionLanguage)
	}
	if a.ReferralProof != nil {
		writeString(buf, *a.ReferralProof)
	}
	if a.EducationalDiscount != nil {
		writeBool(buf, *a.EducationalDiscount)
	}
	if a.BusinessAddress != nil {
		writeString(buf, *a.BusinessAddress)
	}
	if a.HideSponsorBilling != nil {
		writeBool(buf, *a.HideSponsorBilling)
	}
	if a.TaxExempt != nil {
		writeBool(buf, *a.TaxExempt)
	}
	if a.UseEmailAutoFiling != nil {
		writeBool(buf, *a.UseEmailAutoFiling)
	}
	if a.Reminder != nil {
		writeString(buf, *a.Reminder)
	}
	if a.EmailAddressLastConfirmed != nil {
		writeInt64(buf, *a.EmailAddressLastConfirmed)
	}
	if a.PasswordUpdated != nil {
		writeInt64(buf, *a.PasswordUpdated)
	}

	writeApplicationData(buf, a.ApplicationDataKeysOnly, a.ApplicationDataFullMap)

	out := w.Bytes()
	out = append(out, buf.Bytes()...)
	return out
}

// DecodeUserAttributes reverses EncodeUserAttributes.
func DecodeUserAttributes(data []byte) (*types.UserAttributes, error) {
	r, err := newBitmaskReader(data, userAttributesFieldCount)
	if err != nil {
		return nil, fmt.Errorf("codec: decode UserAttributes: %w", err)
	}
	a := &types.UserAttributes{}

	if r.Bit() {
		s, err := readString(r.values)
		if err != nil {
			return nil, err
		}
		a.DefaultLocationName = &s
	}
	if r.Bit() {
		v, err := readFloat64(r.values)
		if err != nil {
			return nil, err
		}
		a.DefaultLatitude = &v
	}
	if r.Bit() {
		v, err := readFloat64(r.values)
		if err != nil {
			return nil, err
		}
		a.DefaultLongitude = &v
	}
	if r.Bit() {
		v, err := readBool(r.values)
		if err != nil {
			return nil, err
		}
		a.PreactivationStatus = &v
	}
	if r.Bit() {
		v, err := readStringSlice(r.values)
		if err != nil {
			return nil, err
		}
		a.ViewedPromotions = v
	}
	if r.Bit() {
		s, err := readString(r.values)
		if err != nil {
			return nil, err
		}
		a.IncomingEmailAddress = &s
	}
	if r.Bit() {
		v, err := readStringSlice(r.values)
		if err != nil {
			return nil, err
		}
		a.RecentMailedAddresses = v
	}
	if r.Bit() {
		s, err := readString(r.values)
		if err != nil {
			return nil, err
		}
		a.Comments = &s
	}
	if r.Bit() {
		v, err := readInt64(r.values)
		if err != nil {
			return nil, err
		}
		a.DateAgreedToTermsOfService = &v
	}
	if r.Bit() {
		v, err := readInt64(r.values)
		if err != nil {
			return nil, err
		}
		v32 := int32(v)
		a.MaxReferrals = &v32
	}
	if r.Bit() {
		v, err := readInt64(r.values)
		if err != nil {
			return nil, err
		}
		v32 := int32(v)
		a.ReferralCount = &v32
	}
	if r.Bit() {
		s, err := readString(r.values)
		if err != nil {
			return nil, err
		}
		a.RefererCode = &s
	}
	if r.Bit() {
		v, err := readInt64(r.values)
		if err != nil {
			return nil, err
		}
		a.SentEmailDate = &v
	}
	if r.Bit() {
		v, err := readInt64(r.values)
		if err != nil {
			return nil, err
		}
		v32 := int32(v)
		a.SentEmailCount = &v32
	}
	if r.Bit() {
		v, err := readInt64(r.values)
		if err != nil {
			return nil, err
		}
		v32 := int32(v)
		a.DailyEmailLimit = &v32
	}
	if r.Bit() {
		v, err := readInt64(r.values)
		if err != nil {
			return nil, err
		}
		a.EmailOptOutDate = &v
	}
	if r.Bit() {
		v, err := readInt64(r.values)
		if err != nil {
			return nil, err
		}
		a.PartnerEmailOptInDate = &v
	}
	if r.Bit() {
		s, err := readString(r.values)
		if err != nil {
			return nil, err
		}
		a.PreferredLanguage = &s
	}
	if r.Bit() {
		s, err := readString(r.values)
		if err != nil {
			return nil, err
		}
		a.PreferredCountry = &s
	}
	if r.Bit() {
		v, err := readBool(r.values)
		if err != nil {
			return nil, err
		}
		a.ClipFullPage = &v
	}
	if r.Bit() {
		s, err := readString(r.values)
		if err != nil {
			return nil, err
		}
		a.TwitterUserName = &s
	}
	if r.Bit() {
		s, err := readString(r.values)
		if err != nil {
			return nil, err
		}
		a.TwitterID = &s
	}
	if r.Bit() {
		s, err := readString(r.values)
		if err != nil {
			return nil, err
		}
		a.GroupName = &s
	}
	if r.Bit() {
		s, err := readString(r.values)
		if err != nil {
			return nil, err
		}
		a.RecognitionLanguage = &s
	}
	if r.Bit() {
		s, err := readString(r.values)
		if err != nil {
			return nil, err
		}
		a.ReferralProof = &s
	}
	if r.Bit() {
		v, err := readBool(r.values)
		if err != nil {
			return nil, err
		}
		a.EducationalDiscount = &v
	}
	if r.Bit() {
		s, err := readString(r.values)
		if err != nil {
			return nil, err
		}
		a.BusinessAddress = &s
	}
	if r.Bit() {
		v, err := readBool(r.values)
		if err != nil {
			return nil, err
		}
		a.HideSponsorBilling = &v
	}
	if r.Bit() {
		v, err := readBool(r.values)
		if err != nil {
			return nil, err
		}
		a.TaxExempt = &v
	}
	if r.Bit() {
		v, err := readBool(r.values)
		if err != nil {
			return nil, err
		}
		a.UseEmailAutoFiling = &v
	}
	if r.Bit() {
		s, err := readString(r.values)
		if err != nil {
			return nil, err
		}
		a.Reminder = &s
	}
	if r.Bit() {
		v, err := readInt64(r.values)
		if err != nil {
			return nil, err
		}
		a.EmailAddressLastConfirmed = &v
	}
	if r.Bit() {
		v, err := readInt64(r.values)
		if err != nil {
			return nil, err
		}
		a.PasswordUpdated = &v
	}

	keysOnly, fullMap, err := readApplicationData(r.values)
	if err != nil {
		return nil, err
	}
	a.ApplicationDataKeysOnly = keysOnly
	a.ApplicationDataFullMap = fullMap

	return a, nil
}
