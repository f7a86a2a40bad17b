package models

type ApiResponse struct {
	Success     bool        `json:"success"`
	Message     string      `json:"message,omitempty"`
	Data        interface{} `json:"data"`
	Error       string      `json:"error,omitempty"`
	Page        int         `json:"page,omitempty"`
	Limit       int         `json:"limit,omitempty"`
	Total       *int64      `json:"total,omitempty"`
	UnreadCount *int64      `json:"unreadCount,omitempty"`
}

func SuccessResponse(data interface{}, message string) ApiResponse {
	return ApiResponse{
		Success: true,
		Data:    data,
		Message: message,
	}
}

func ErrorResponse(message string) ApiResponse {
	return ApiResponse{
		Success: false,
		Message: message,
	}
}

func PaginatedResponse(data interface{}, page, limit int, total int64) ApiResponse {
	return ApiResponse{
		Success: true,
		Data:    data,
		Page:    page,
		Limit:   limit,
		Total:   &total,
	}
}

// InboxResponse is a notification page with the caller's unread count.
func InboxResponse(page *NotificationPage, pageNum, limit int) ApiResponse {
	res := PaginatedResponse(page.Items, pageNum, limit, page.Total)
	unread := page.UnreadCount
	res.UnreadCount = &unread
	return res
}
