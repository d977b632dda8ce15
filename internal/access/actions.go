// Package access answers "may this identity perform this action" from an
// external, append-only rule file. Anything not explicitly allowed is denied.
package access

// Action names a privileged operation as it appears in the rule file.
type Action string

const (
	CreateStudentAccount Action = "create_student_account"
	CreateTeacherAccount Action = "create_teacher_account"
	EnterGrade           Action = "enter_grade"
	ShowAllGrades        Action = "show_all_grades"
)

// RoleTeacher is the role every teacher account is grouped into.
const RoleTeacher = "teacher"
