package domain

const (
	NotificationRosterPublished   = "roster_published"
	NotificationRosterUnchanged   = "roster_unchanged"
	NotificationShiftsMerged      = "shifts_merged"
	NotificationRosterUnpublished = "roster_unpublished"
)

// NotificationMessage 投递到消息队列中，由 notifier worker 消费并发送邮件
type NotificationMessage struct {
	Type    string `json:"type"`
	UserID  int64  `json:"userID"`
	To      string `json:"to"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Link    string `json:"link"`
}
