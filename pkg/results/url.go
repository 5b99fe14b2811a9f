package results

import (
	"fmt"
	"regexp"
	"strings"
)

// S3 URL recognizers. Virtual-hosted style covers region, dualstack,
// accelerate, and China-partition suffixes; path style likewise.
var (
	reVirtualHosted = regexp.MustCompile(`(?i)^https?://([^.]+)\.s3(?:[.-][a-z0-9-]+)*\.amazonaws\.com(?:\.cn)?/(.+?)(?:\?.*)?$`)
	rePathStyle     = regexp.MustCompile(`(?i)^https?://s3(?:[.-][a-z0-9-]+)*\.amazonaws\.com(?:\.cn)?/([^/]+)/(.+?)(?:\?.*)?$`)
)

// ExtractBucketKey parses bucket and object key out of common S3 URL forms:
//
//   - s3://bucket/key
//   - https://bucket.s3.amazonaws.com/key (plus regional variants)
//   - https://s3.amazonaws.com/bucket/key (plus regional variants)
func ExtractBucketKey(s3URL string) (bucket, key string, err error) {
	if rest, ok := strings.CutPrefix(s3URL, "s3://"); ok {
		parts := strings.SplitN(rest, "/", 2)
		if len(parts) == 2 && parts[0] != "" && parts[1] != "" {
			return parts[0], parts[1], nil
		}
		return "", "", fmt.Errorf("unrecognized S3 URL format: %s", s3URL)
	}

	if m := reVirtualHosted.FindStringSubmatch(s3URL); m != nil {
		return m[1], m[2], nil
	}
	if m := rePathStyle.FindStringSubmatch(s3URL); m != nil {
		return m[1], m[2], nil
	}

	return "", "", fmt.Errorf("unrecognized S3 URL format: %s", s3URL)
}
