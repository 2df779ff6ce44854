package structure

// workoutTypes maps source numeric workout type ids to destination activity
// type strings. Ids 9 and 29 are both strength variants on the source side.
var workoutTypes = map[int]string{
	1:  "Swim",
	2:  "Ride",
	3:  "Run",
	9:  "WeightTraining",
	11: "NordicSki",
	12: "Rowing",
	13: "Walk",
	29: "WeightTraining",
}

// MapWorkoutType maps a source workout type id to a destination activity
// type. Unknown ids map to "Other"; the mapping never fails.
func MapWorkoutType(id int) string {
	if t, ok := workoutTypes[id]; ok {
		return t
	}
	return "Other"
}
