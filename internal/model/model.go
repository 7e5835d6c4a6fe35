package model

// Server entities mirrored locally. Field names follow the campus API's
// JSON payloads; dates travel as "2006-01-02" strings on the wire.

type Profile struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department"`
	RegNumber  string `json:"reg_number,omitempty"`
}

type Course struct {
	ID          int    `json:"id"`
	Code        string `json:"code"`
	Title       string `json:"title"`
	TeacherName string `json:"teacher_name"`
	CreditHours int    `json:"credit_hours"`
	Semester    string `json:"semester"`
}

type AttendanceRecord struct {
	CourseID  int    `json:"course_id"`
	StudentID int    `json:"student_id"`
	Date      string `json:"date"`
	Status    string `json:"status"`
}

type MarkRecord struct {
	CourseID   int     `json:"course_id"`
	StudentID  int     `json:"student_id"`
	Evaluation string  `json:"evaluation"`
	Obtained   float64 `json:"obtained"`
	Total      float64 `json:"total"`
}

type Announcement struct {
	ID       int64  `json:"id"`
	CourseID int    `json:"course_id"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Author   string `json:"author"`
	PostedAt string `json:"posted_at"`
}

type Notification struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
	Read      bool   `json:"read"`
}

type FeeRecord struct {
	ID       int     `json:"id"`
	Semester string  `json:"semester"`
	Amount   float64 `json:"amount"`
	Paid     float64 `json:"paid"`
	DueDate  string  `json:"due_date"`
	Status   string  `json:"status"`
}

type ScheduleEntry struct {
	ID        int    `json:"id"`
	CourseID  int    `json:"course_id"`
	Day       string `json:"day"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Room      string `json:"room"`
}

type Dashboard struct {
	Profile       Profile `json:"profile"`
	CourseCount   int     `json:"course_count"`
	UnreadNotices int     `json:"unread_notices"`
	PendingFees   float64 `json:"pending_fees"`
}

// Mutation request bodies. The same types are serialized into the outbox
// payload and onto the wire, so a queued mutation replays byte-for-byte.

type AttendanceMark struct {
	StudentID int    `json:"student_id"`
	Status    string `json:"status"`
}

type SubmitAttendanceRequest struct {
	CourseID int              `json:"course_id"`
	Date     string           `json:"date"`
	Records  []AttendanceMark `json:"records"`
}

type MarkEntry struct {
	StudentID int     `json:"student_id"`
	Obtained  float64 `json:"obtained"`
}

type SubmitMarksRequest struct {
	CourseID   int         `json:"course_id"`
	Evaluation string      `json:"evaluation"`
	Total      float64     `json:"total"`
	Records    []MarkEntry `json:"records"`
}

type PostAnnouncementRequest struct {
	CourseID int    `json:"course_id"`
	Title    string `json:"title"`
	Body     string `json:"body"`
}
