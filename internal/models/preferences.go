package models

// Per-axis preference types make "unset" structural instead of relying on
// nil checks scattered across scoring branches. The zero value of each type
// is the unset state.

// GoalPreference is an optional training goal.
type GoalPreference struct {
	value Goal
	set   bool
}

// PreferGoal builds a set goal preference.
func PreferGoal(g Goal) GoalPreference {
	return GoalPreference{value: g, set: true}
}

// Get returns the goal and whether it was set.
func (p GoalPreference) Get() (Goal, bool) {
	return p.value, p.set
}

// DaysPreference is an optional days-per-week target.
type DaysPreference struct {
	value int
	set   bool
}

// PreferDays builds a set days preference.
func PreferDays(days int) DaysPreference {
	return DaysPreference{value: days, set: true}
}

// Get returns the day count and whether it was set.
func (p DaysPreference) Get() (int, bool) {
	return p.value, p.set
}

// LevelPreference is an optional experience level.
type LevelPreference struct {
	value Level
	set   bool
}

// PreferLevel builds a set level preference.
func PreferLevel(l Level) LevelPreference {
	return LevelPreference{value: l, set: true}
}

// Get returns the level and whether it was set.
func (p LevelPreference) Get() (Level, bool) {
	return p.value, p.set
}

// EquipmentPreference is an optional set of owned equipment tags.
type EquipmentPreference struct {
	owned map[string]struct{}
	set   bool
}

// PreferEquipment builds a set equipment preference from owned tags.
func PreferEquipment(tags []string) EquipmentPreference {
	owned := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		owned[tag] = struct{}{}
	}
	return EquipmentPreference{owned: owned, set: true}
}

// IsSet reports whether the user stated an equipment inventory.
func (p EquipmentPreference) IsSet() bool {
	return p.set
}

// Owns reports whether the stated inventory includes the tag.
func (p EquipmentPreference) Owns(tag string) bool {
	_, ok := p.owned[tag]
	return ok
}

// TimePreference is an optional per-session time budget in minutes.
type TimePreference struct {
	value int
	set   bool
}

// PreferTime builds a set time-budget preference.
func PreferTime(minutes int) TimePreference {
	return TimePreference{value: minutes, set: true}
}

// Get returns the budget and whether it was set.
func (p TimePreference) Get() (int, bool) {
	return p.value, p.set
}

// ProgramPreferences collects a user's stated preferences for one matching
// operation. Ephemeral: never persisted.
type ProgramPreferences struct {
	Goal      GoalPreference
	Days      DaysPreference
	Level     LevelPreference
	Equipment EquipmentPreference
	Time      TimePreference
}
