package types

// CourseType distinguishes regular online courses from in-person offerings.
type CourseType string

const (
	CourseTypeOnline     CourseType = "online"
	CourseTypePresential CourseType = "presential"
)
