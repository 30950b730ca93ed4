package cache

import "fmt"

func AssessmentKey(id string) string {
	return fmt.Sprintf("assessment:%s", id)
}

// UserAssessmentsKey names one cached page of a user's list. An empty locale
// means all locales.
func UserAssessmentsKey(userID, locale string, page, limit int) string {
	if locale == "" {
		locale = "all"
	}
	return fmt.Sprintf("user:%s:assessments:%s:%d:%d", userID, locale, page, limit)
}

// UserAssessmentsPattern matches every cached page of a user's list.
func UserAssessmentsPattern(userID string) string {
	return fmt.Sprintf("user:%s:assessments:*", userID)
}

func DoctorsKey() string {
	return "doctors"
}

// UserSyncedKey marks a user whose claims were recently mirrored.
func UserSyncedKey(userID string) string {
	return fmt.Sprintf("user:%s:synced", userID)
}
