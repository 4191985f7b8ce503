package types

import "strings"

// PrivilegeLevel mirrors the sync service's coarse account tiers.
type PrivilegeLevel int

const (
	PrivilegeNormal PrivilegeLevel = iota
	PrivilegePremium
	PrivilegeVIP
	PrivilegeManager
	PrivilegeSupport
	PrivilegeAdmin
	PrivilegeBusiness
)

// User is the account owning every other entity in the store.
// Expunging a user cascades to its exclusively-owned sub-records.
type User struct {
	ID                 int64
	Username           string
	Email              string
	Name               string
	Timezone           string
	Privilege          PrivilegeLevel
	CreationTimestamp  int64
	ModificationTime   int64
	DeletionTimestamp  *int64
	Active             bool

	Attributes       *UserAttributes
	Accounting       *Accounting
	PremiumInfo      *PremiumInfo
	BusinessUserInfo *BusinessUserInfo
}

// Validate checks the invariants the storage engine enforces on Add
// and Update.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return NewError(KindInvalidInput, "User.Validate", "username must not be empty", nil)
	}
	if strings.TrimSpace(u.Email) == "" {
		return NewError(KindInvalidInput, "User.Validate", "email must not be empty", nil)
	}
	return nil
}

// UserAttributes is a heterogeneous bag of optional profile fields,
// persisted as an opaque blob via the codec package.
type UserAttributes struct {
	DefaultLocationName   *string
	DefaultLatitude       *float64
	DefaultLongitude      *float64
	PreactivationStatus   *bool
	ViewedPromotions      []string
	IncomingEmailAddress  *string
	RecentMailedAddresses []string
	Comments              *string
	DateAgreedToTermsOfService *int64
	MaxReferrals          *int32
	ReferralCount         *int32
	RefererCode           *string
	SentEmailDate         *int64
	SentEmailCount        *int32
	DailyEmailLimit       *int32
	EmailOptOutDate       *int64
	PartnerEmailOptInDate *int64
	PreferredLanguage     *string
	PreferredCountry      *string
	ClipFullPage          *bool
	TwitterUserName       *string
	TwitterID             *string
	GroupName             *string
	RecognitionLanguage   *string
	ReferralProof         *string
	EducationalDiscount   *bool
	BusinessAddress       *string
	HideSponsorBilling    *bool
	TaxExempt             *bool
	UseEmailAutoFiling    *bool
	Reminder              *string
	EmailAddressLastConfirmed *int64
	PasswordUpdated       *int64

	// ApplicationData is an opaque key/value store carried through
	// unchanged: KeysOnly is the subset of keys whose value is not
	// tracked locally, FullMap is the subset that is.
	ApplicationDataKeysOnly []string
	ApplicationDataFullMap  map[string]string
}

// Accounting records billing-cycle facts about the account.
type Accounting struct {
	UploadLimitEnd     *int64
	UploadLimit        *int64
	LastSyncTime       *int64
	PremiumServiceStatus *int32
	PremiumOrderNumber *string
	PremiumCommerceService *string
	PremiumServiceStart *int64
	PremiumServiceSKU  *string
	LastSuccessfulCharge *int64
	LastFailedCharge   *int64
	LastFailedChargeReason *string
	NextPaymentDue     *int64
	PremiumLockUntil   *int64
	Updated            *int64
}

// PremiumInfo carries the premium-tier feature flags and limits.
type PremiumInfo struct {
	CurrentTime      *int64
	Premium          *bool
	PremiumRecurring *bool
	PremiumExpirationDate *int64
	PremiumExtendable *bool
	PremiumPending   *bool
	PremiumCancellationPending *bool
	CanPurchaseUploadAllowance *bool
	Sponsored        *bool
}

// BusinessUserInfo carries business-account membership facts.
type BusinessUserInfo struct {
	BusinessID   *int32
	BusinessName *string
	Role         *int32
	Email        *string
	Updated      *int64
}
