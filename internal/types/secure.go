package types

const redactedPlaceholder = "***REDACTED***"

var redactedJSON = []byte(`"***REDACTED***"`)

// SecretString holds a credential that must not reach logs or JSON output.
// String and MarshalJSON both return a placeholder; Unmask returns the value.
type SecretString string

func (s SecretString) String() string {
	return redactedPlaceholder
}

func (s SecretString) MarshalJSON() ([]byte, error) {
	return redactedJSON, nil
}

// Unmask returns the plaintext. Call it only where the raw value is handed to
// a driver or client.
func (s SecretString) Unmask() string {
	return string(s)
}
