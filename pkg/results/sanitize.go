package results

import "regexp"

// Credential redaction patterns. Storage-client errors can carry request
// signing material; everything that leaves this package goes through
// sanitizeCredentials first.
var (
	reAccessKeyID = regexp.MustCompile(`(?:AKIA|ASIA|AGPA|AIDA|AROA|ANPA)[A-Z0-9]{16}`)
	reSecretLike  = regexp.MustCompile(`[A-Za-z0-9+/=]{40,}`)
	rePresignArg  = regexp.MustCompile(`(?i)(X-Amz-(?:Credential|Signature|Security-Token|SignedHeaders|Algorithm|Expires))=[^&\s]+`)

	reXMLAccessKey = regexp.MustCompile(`<AWSAccessKeyId>[^<]+</AWSAccessKeyId>`)
	reXMLSecretKey = regexp.MustCompile(`<SecretAccessKey>[^<]+</SecretAccessKey>`)
	reXMLSignature = regexp.MustCompile(`<Signature>[^<]+</Signature>`)

	reJSONAccessKey = regexp.MustCompile(`"AWSAccessKeyId":\s*"[^"]+"`)
	reJSONSecretKey = regexp.MustCompile(`"SecretAccessKey":\s*"[^"]+"`)
	reJSONSignature = regexp.MustCompile(`"Signature":\s*"[^"]+"`)
)

// sanitizeCredentials removes credential material from an error message.
//
// Redacts access key IDs, secret-like base64 strings, presigned URL query
// parameters, and credential fields embedded in XML or JSON error bodies.
func sanitizeCredentials(message string) string {
	message = reAccessKeyID.ReplaceAllString(message, "[REDACTED_KEY]")
	message = reSecretLike.ReplaceAllString(message, "[REDACTED]")
	message = rePresignArg.ReplaceAllString(message, "$1=[REDACTED]")

	message = reXMLAccessKey.ReplaceAllString(message, "<AWSAccessKeyId>[REDACTED_KEY]</AWSAccessKeyId>")
	message = reXMLSecretKey.ReplaceAllString(message, "<SecretAccessKey>[REDACTED]</SecretAccessKey>")
	message = reXMLSignature.ReplaceAllString(message, "<Signature>[REDACTED]</Signature>")

	message = reJSONAccessKey.ReplaceAllString(message, `"AWSAccessKeyId": "[REDACTED_KEY]"`)
	message = reJSONSecretKey.ReplaceAllString(message, `"SecretAccessKey": "[REDACTED]"`)
	message = reJSONSignature.ReplaceAllString(message, `"Signature": "[REDACTED]"`)

	return message
}
