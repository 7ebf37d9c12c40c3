package domain

// ProfileSnapshot is the part of the learner profile the digest reports on.
type ProfileSnapshot struct {
	Username            string
	StreakCount         int
	StreakExtendedToday bool
	LearningLanguage    string
	LevelProgress       float64
}
