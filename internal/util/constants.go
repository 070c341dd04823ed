package util

import "time"

const (
	StorageLocal  = "local"
	StorageMinio  = "minio"
	StorageOSS    = "oss"
	StorageMemory = "memory"
)

// CertificateAvailabilityDelay is the fixed window between passing the
// qualifying test and the certificate becoming downloadable.
const CertificateAvailabilityDelay = 48 * time.Hour

const MimeJSON = "application/json"
