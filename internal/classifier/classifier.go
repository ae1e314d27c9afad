// Package classifier assigns a coarse topic category to a question.
package classifier

import (
	"strings"

	"github.com/inucreativehrd21/FINAL-SERVER/internal/model"
)

// rule maps a category to the keywords that select it.
type rule struct {
	category model.Category
	keywords []string
}

// rules is evaluated in order; the first category with a matching keyword wins.
// Git keywords exclude plain English words such as "merge", "push" or "remote".
var rules = []rule{
	{
		category: model.CategoryGit,
		keywords: []string{
			"git", "rebase", "stash", "cherry-pick", "pull request", "merge conflict",
			"깃", "커밋", "브랜치", "리베이스", "풀 리퀘스트",
		},
	},
	{
		category: model.CategoryPython,
		keywords: []string{
			"python", "django", "flask", "fastapi", "pandas", "numpy", "decorator",
			"list comprehension", "virtualenv", "venv", "pip install", "pytest",
			"def ", "import ", "파이썬", "데코레이터", "장고",
		},
	},
	{
		category: model.CategoryGeneral,
		keywords: []string{
			"code", "bug", "error", "debug", "function", "variable", "algorithm",
			"program", "compile", "exception", "api", "database", "test",
			"코드", "버그", "에러", "오류", "함수", "변수", "알고리즘", "프로그래밍",
		},
	},
}

// Classify returns the first category whose keyword occurs in question,
// compared case-insensitively, or unknown when nothing matches.
func Classify(question string) model.Category {
	q := strings.ToLower(question)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(q, kw) {
				return r.category
			}
		}
	}
	return model.CategoryUnknown
}
