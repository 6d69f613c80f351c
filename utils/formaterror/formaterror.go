package formaterror

import "strings"

// FormatError maps raw persistence errors to per-field messages the API
// can hand back with the rejected input.
func FormatError(errString string) map[string]string {
	errorMessages := make(map[string]string)

	if strings.Contains(errString, "username") {
		errorMessages["Taken_username"] = "Username Already Taken"
	}
	if strings.Contains(errString, "email") {
		errorMessages["Taken_email"] = "Email Already Taken"
	}
	if strings.Contains(errString, "slug") {
		errorMessages["Taken_slug"] = "Slug Already Taken"
	}
	if strings.Contains(errString, "hashedPassword") {
		errorMessages["Incorrect_password"] = "Incorrect Password"
	}
	if strings.Contains(errString, "record not found") {
		errorMessages["No_record"] = "No Record Found"
	}
	if len(errorMessages) == 0 {
		errorMessages["Incorrect_details"] = "Incorrect Details"
	}
	return errorMessages
}
