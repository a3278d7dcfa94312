package model

// Asset is the stored metadata of an uploaded expense receipt. It is
// embedded as jsonb on the owning expense rather than kept in its own
// table; the object itself lives in S3.
type Asset struct {
	Bucket   string `json:"bucket"`
	S3Key    string `json:"s3_key"`
	ETag     string `json:"etag"`
	SHA256   string `json:"sha256"`
	MIME     string `json:"mime"`
	SizeB    int64  `json:"size_b"`
	Filename string `json:"filename"`
}
