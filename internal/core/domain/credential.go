package domain

// PortalCredential holds a kindergarten's login for the external accounting
// portal. EncryptedSecret is the opaque vault record ("hex(iv):hex(ct)");
// the plaintext password exists only transiently inside a transmission run.
type PortalCredential struct {
	KindergartenID  string `json:"kindergartenID"`
	LoginID         string `json:"loginID"`
	EncryptedSecret string `json:"-"`
	AuditFields
}
