package service

import (
	"elearning_backend/internal/model"
	"math"
)

// ProgressSet 某个用户全部进度行的快照，键为实体 ID。
// 传 nil 表示匿名访问：一切节点都锁定
type ProgressSet struct {
	Content            map[uint]model.ContentProgress
	Chapter            map[uint]model.ChapterProgress
	Module             map[uint]model.ModuleProgress
	PassedQuizChapters map[uint]bool
}

// ContentView 带解锁/完成标注的内容节点
type ContentView struct {
	ID          uint              `json:"id"`
	Title       string            `json:"title"`
	Type        model.ContentType `json:"type"`
	Duration    int               `json:"duration"`
	Order       int               `json:"order"`
	IsCompleted bool              `json:"isCompleted"`
	IsUnlocked  bool              `json:"isUnlocked"`
	Progress    int               `json:"progress"`
	WatchTime   int               `json:"watchTime"`
}

// QuizView 章节测验状态。IsAccessible 表示章节内容已全部完成、可以进入测验
type QuizView struct {
	ID           uint   `json:"id"`
	Title        string `json:"title"`
	PassingScore int    `json:"passingScore"`
	IsPassed     bool   `json:"isPassed"`
	IsAccessible bool   `json:"isAccessible"`
}

type ChapterView struct {
	ID                   uint          `json:"id"`
	Title                string        `json:"title"`
	Description          string        `json:"description"`
	Order                int           `json:"order"`
	IsCompleted          bool          `json:"isCompleted"`
	IsUnlocked           bool          `json:"isUnlocked"`
	AllContentsCompleted bool          `json:"allContentsCompleted"`
	QuizPassed           bool          `json:"quizPassed"`
	Quiz                 *QuizView     `json:"quiz,omitempty"`
	Contents             []ContentView `json:"contents"`
}

type ModuleView struct {
	ID                   uint          `json:"id"`
	Title                string        `json:"title"`
	Description          string        `json:"description"`
	Order                int           `json:"order"`
	IsCompleted          bool          `json:"isCompleted"`
	IsUnlocked           bool          `json:"isUnlocked"`
	AllChaptersCompleted bool          `json:"allChaptersCompleted"`
	Progress             int           `json:"progress"`
	Chapters             []ChapterView `json:"chapters"`
}

// EvaluateHierarchy 对整棵活跃课程树做一次解锁/完成推导。
// 纯函数：输入为按 order 排好的层级快照和进度快照，不触碰存储。
// 解锁规则：每层第一个节点继承父层解锁状态，其余节点看前一个兄弟是否完成
func EvaluateHierarchy(modules []model.Module, progress *ProgressSet) []ModuleView {
	views := make([]ModuleView, 0, len(modules))

	for moduleIndex, module := range modules {
		moduleUnlocked := false
		if progress != nil {
			if moduleIndex == 0 {
				moduleUnlocked = true
			} else {
				prev := modules[moduleIndex-1]
				moduleUnlocked = progress.Module[prev.ID].IsCompleted
			}
		}

		moduleView := ModuleView{
			ID:          module.ID,
			Title:       module.Title,
			Description: module.Description,
			Order:       module.Order,
			IsUnlocked:  moduleUnlocked,
			Chapters:    make([]ChapterView, 0, len(module.Chapters)),
		}
		if progress != nil {
			moduleView.IsCompleted = progress.Module[module.ID].IsCompleted
		}

		totalContents := 0
		completedContents := 0

		for chapterIndex, chapter := range module.Chapters {
			chapterUnlocked := false
			if progress != nil {
				if chapterIndex == 0 {
					chapterUnlocked = moduleUnlocked
				} else {
					prev := module.Chapters[chapterIndex-1]
					chapterUnlocked = progress.Chapter[prev.ID].IsCompleted
				}
			}

			chapterView := ChapterView{
				ID:          chapter.ID,
				Title:       chapter.Title,
				Description: chapter.Description,
				Order:       chapter.Order,
				IsUnlocked:  chapterUnlocked,
				Contents:    make([]ContentView, 0, len(chapter.Contents)),
			}
			if progress != nil {
				chapterView.IsCompleted = progress.Chapter[chapter.ID].IsCompleted
			}

			allContentsCompleted := len(chapter.Contents) > 0

			for contentIndex, content := range chapter.Contents {
				contentUnlocked := false
				var contentProgress model.ContentProgress
				if progress != nil {
					contentProgress = progress.Content[content.ID]
					if contentIndex == 0 {
						contentUnlocked = chapterUnlocked
					} else {
						prev := chapter.Contents[contentIndex-1]
						contentUnlocked = progress.Content[prev.ID].IsCompleted
					}
				}

				if !contentProgress.IsCompleted {
					allContentsCompleted = false
				} else {
					completedContents++
				}
				totalContents++

				chapterView.Contents = append(chapterView.Contents, ContentView{
					ID:          content.ID,
					Title:       content.Title,
					Type:        content.Type,
					Duration:    content.Duration,
					Order:       content.Order,
					IsCompleted: contentProgress.IsCompleted,
					IsUnlocked:  contentUnlocked,
					Progress:    watchPercent(contentProgress.WatchTime, content.Duration),
					WatchTime:   contentProgress.WatchTime,
				})
			}

			chapterView.AllContentsCompleted = allContentsCompleted

			quizPassed := true
			if chapter.Quiz != nil {
				quizPassed = progress != nil && progress.PassedQuizChapters[chapter.ID]
				chapterView.Quiz = &QuizView{
					ID:           chapter.Quiz.ID,
					Title:        chapter.Quiz.Title,
					PassingScore: chapter.Quiz.PassingScore,
					IsPassed:     quizPassed,
					IsAccessible: allContentsCompleted,
				}
			} else if progress == nil {
				quizPassed = false
			}
			chapterView.QuizPassed = quizPassed

			moduleView.Chapters = append(moduleView.Chapters, chapterView)
		}

		// 空模块不可能完成，防止对空列表做 every 得出的空真
		allChaptersCompleted := len(module.Chapters) > 0 && progress != nil
		for _, chapterView := range moduleView.Chapters {
			if !chapterView.IsCompleted {
				allChaptersCompleted = false
				break
			}
		}
		moduleView.AllChaptersCompleted = allChaptersCompleted

		if totalContents > 0 {
			moduleView.Progress = roundPercent(float64(completedContents) / float64(totalContents) * 100)
		}

		views = append(views, moduleView)
	}

	return views
}

// ContentUnlocked 写路径的解锁校验：直接在推导结果上查找目标内容
func ContentUnlocked(modules []model.Module, progress *ProgressSet, contentID uint) bool {
	for _, moduleView := range EvaluateHierarchy(modules, progress) {
		for _, chapterView := range moduleView.Chapters {
			for _, contentView := range chapterView.Contents {
				if contentView.ID == contentID {
					return contentView.IsUnlocked
				}
			}
		}
	}
	return false
}

// watchPercent 观看进度百分比，封顶 100
func watchPercent(watchTime, duration int) int {
	if duration <= 0 {
		return 0
	}
	percent := float64(watchTime) / float64(duration) * 100
	if percent > 100 {
		percent = 100
	}
	return roundPercent(percent)
}

// roundPercent 四舍五入到最近整数（.5 进位）
func roundPercent(value float64) int {
	return int(math.Round(value))
}
