package models

import (
	"gorm.io/datatypes"
)

// Learning path hierarchy: Unit -> Skill -> Lesson -> Exercise. Skills
// unlock linearly: a skill is available once every lesson of the previous
// skill has been completed.

type Unit struct {
	ID          string `gorm:"column:id;type:text;primaryKey" json:"id"`
	Title       string `gorm:"column:title;type:text" json:"title"`
	Description string `gorm:"column:description;type:text" json:"description"`
	Color       string `gorm:"column:color;type:text" json:"color"`
	Position    int    `gorm:"column:position" json:"position"`

	Skills []Skill `gorm:"foreignKey:UnitID" json:"skills"`
}

func (Unit) TableName() string { return "units" }

type Skill struct {
	ID          string `gorm:"column:id;type:text;primaryKey" json:"id"`
	UnitID      string `gorm:"column:unit_id;type:text;index" json:"unit_id"`
	Title       string `gorm:"column:title;type:text" json:"title"`
	Description string `gorm:"column:description;type:text" json:"description"`
	Icon        string `gorm:"column:icon;type:text" json:"icon"`
	Position    int    `gorm:"column:position" json:"position"`
	TotalXP     int    `gorm:"column:total_xp" json:"total_xp"`

	Lessons []Lesson `gorm:"foreignKey:SkillID" json:"lessons"`
}

func (Skill) TableName() string { return "skills" }

type Lesson struct {
	ID          string `gorm:"column:id;type:text;primaryKey" json:"id"`
	SkillID     string `gorm:"column:skill_id;type:text;index" json:"skill_id"`
	Title       string `gorm:"column:title;type:text" json:"title"`
	Description string `gorm:"column:description;type:text" json:"description"`
	Position    int    `gorm:"column:position" json:"position"`
	XPReward    int    `gorm:"column:xp_reward" json:"xp_reward"`
	Premium     bool   `gorm:"column:premium" json:"premium"`

	Exercises []Exercise `gorm:"foreignKey:LessonID" json:"exercises"`
}

func (Lesson) TableName() string { return "lessons" }

type Exercise struct {
	ID         string `gorm:"column:id;type:text;primaryKey" json:"id"`
	LessonID   string `gorm:"column:lesson_id;type:text;index" json:"lesson_id"`
	Type       string `gorm:"column:type;type:text" json:"type"` // repeat|minimal_pair|sentence|listen_choose
	Word       string `gorm:"column:word;type:text" json:"word"`
	IPA        string `gorm:"column:ipa;type:text" json:"ipa"`
	Difficulty string `gorm:"column:difficulty;type:text" json:"difficulty"`
	Position   int    `gorm:"column:position" json:"position"`

	// Multiple-choice options for listen_choose / minimal_pair exercises.
	Options     datatypes.JSON `gorm:"column:options;type:jsonb" json:"options,omitempty"`
	Translation string         `gorm:"column:translation;type:text" json:"translation,omitempty"`
}

func (Exercise) TableName() string { return "exercises" }
