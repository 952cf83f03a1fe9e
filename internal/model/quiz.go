package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
)

// Quiz 章节的终点测验，通过后章节才算完成
type Quiz struct {
	BaseModel
	ChapterID    uint       `gorm:"uniqueIndex;not null" json:"chapterId"`
	Title        string     `gorm:"size:255;not null" json:"title"`
	PassingScore int        `gorm:"not null;default:70" json:"passingScore"` // 0-100，score >= PassingScore 即通过
	Questions    []Question `gorm:"serializer:json" json:"questions"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// Question 测验题目。Type 为判别字段：单选题使用 Options + CorrectIndex，
// 判断题使用 CorrectBool，两者互斥
type Question struct {
	ID           uint         `json:"id"`
	Type         QuestionType `json:"type"`
	Text         string       `json:"question"`
	Options      []string     `json:"options,omitempty"`
	CorrectIndex *int         `json:"correctIndex,omitempty"`
	CorrectBool  *bool        `json:"correctBool,omitempty"`
	Explanation  string       `json:"explanation,omitempty"`
}

// Validate 校验题目的变体形状
func (q *Question) Validate() error {
	switch q.Type {
	case MultipleChoice:
		if len(q.Options) != 4 {
			return fmt.Errorf("question %d: multiple choice requires exactly 4 options", q.ID)
		}
		if q.CorrectIndex == nil || *q.CorrectIndex < 0 || *q.CorrectIndex > 3 {
			return fmt.Errorf("question %d: correct index out of range", q.ID)
		}
	case TrueFalse:
		if q.CorrectBool == nil {
			return fmt.Errorf("question %d: missing correct boolean", q.ID)
		}
	default:
		return fmt.Errorf("question %d: unknown type %q", q.ID, q.Type)
	}
	return nil
}

// Answer 提交的单题答案，按题型只会有一个分支被填充
type Answer struct {
	Index *int
	Bool  *bool
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		a.Bool = &b
		return nil
	}
	var i int
	if err := json.Unmarshal(data, &i); err == nil {
		a.Index = &i
		return nil
	}
	return errors.New("answer must be an option index or a boolean")
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.Bool != nil {
		return json.Marshal(*a.Bool)
	}
	if a.Index != nil {
		return json.Marshal(*a.Index)
	}
	return []byte("null"), nil
}

// Matches 判断该答案对给定题目是否正确
func (a Answer) Matches(q *Question) bool {
	switch q.Type {
	case MultipleChoice:
		return a.Index != nil && q.CorrectIndex != nil && *a.Index == *q.CorrectIndex
	case TrueFalse:
		return a.Bool != nil && q.CorrectBool != nil && *a.Bool == *q.CorrectBool
	}
	return false
}

// QuizResult 每个 (用户, 测验) 至多一行。未通过的结果在重试时被删除重建，
// 通过后的结果不可变
type QuizResult struct {
	BaseModel
	UserID  uint            `gorm:"not null;uniqueIndex:idx_quiz_result_user_quiz" json:"userId"`
	QuizID  uint            `gorm:"not null;uniqueIndex:idx_quiz_result_user_quiz" json:"quizId"`
	Score   int             `gorm:"not null" json:"score"`
	Answers map[uint]Answer `gorm:"serializer:json" json:"answers"`
	Passed  bool            `gorm:"default:false" json:"passed"`
}

func (QuizResult) TableName() string {
	return "quiz_results"
}
