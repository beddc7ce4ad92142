package model

// All 返回需要自动迁移的模型
func All() []any {
	return []any{
		&User{},
		&Follow{},
		&Exercise{},
		&Workout{},
		&WorkoutLike{},
		&Comment{},
		&Outbox{},
	}
}
