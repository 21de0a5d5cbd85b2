package server

// Request payloads. Pointer fields on update payloads distinguish "absent"
// from an explicit value, matching the partial-update contract.

type createTaskRequest struct {
	ID          string `json:"id" validate:"required"`
	Description string `json:"description" validate:"required"`
	CategoryID  *int64 `json:"category_id" validate:"required"`
	StatusID    *int64 `json:"status_id" validate:"required"`
	Notes       string `json:"notes"`
	Priority    *int   `json:"priority"`
}

type updateTaskRequest struct {
	Description  *string `json:"description"`
	CategoryID   *int64  `json:"category_id"`
	StatusID     *int64  `json:"status_id"`
	IsDone       *bool   `json:"is_done"`
	Notes        *string `json:"notes"`
	Priority     *int    `json:"priority"`
	DisplayOrder *int64  `json:"display_order"`
}

type bulkTaskUpdate struct {
	ID string `json:"id"`
	updateTaskRequest
}

type bulkUpdateResult struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type createCategoryRequest struct {
	Name  string `json:"name" validate:"required"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

type updateCategoryRequest struct {
	Name         *string `json:"name"`
	Color        *string `json:"color"`
	Icon         *string `json:"icon"`
	DisplayOrder *int64  `json:"display_order"`
}

type createStatusRequest struct {
	Name  string `json:"name" validate:"required"`
	Color string `json:"color"`
}

type updateStatusRequest struct {
	Name         *string `json:"name"`
	Color        *string `json:"color"`
	DisplayOrder *int64  `json:"display_order"`
}
