package models

import "time"

type Assignment struct {
	ID         int64     `json:"id"`
	ReportID   int64     `json:"report_id"`
	StaffID    int64     `json:"staff_id"`
	AssignedBy *int64    `json:"assigned_by,omitempty"`
	Note       *string   `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// AssignmentDetail joins the assignment with the assignee's identity, which
// audit entries need before rows are deleted.
type AssignmentDetail struct {
	Assignment
	StaffName       string  `json:"staff_name"`
	StaffEmail      string  `json:"staff_email"`
	StaffDepartment string  `json:"staff_department"`
	AssignedByName  *string `json:"assigned_by_name,omitempty"`
}

func (d *AssignmentDetail) StaffIdentity() string {
	return d.StaffName + " (" + d.StaffEmail + ")"
}
