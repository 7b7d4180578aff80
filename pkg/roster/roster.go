// Package roster holds the in-memory student roster and the validators that
// guard every value entering it.
package roster

// Roster is an ordered, growable collection of students. Records keep their
// insertion order; removing one shifts the later records down by one.
type Roster struct {
	students  []Student
	validator *Validator
}

// NewRoster creates an empty roster. A nil validator accepts decimal IDs.
func NewRoster(validator *Validator) *Roster {
	if validator == nil {
		validator = NewValidator(DecimalIDs)
	}
	return &Roster{
		students:  make([]Student, 0, 2),
		validator: validator,
	}
}

// Validator returns the validator used by Add and Update
func (r *Roster) Validator() *Validator {
	return r.validator
}

// Len returns the number of stored students
func (r *Roster) Len() int {
	return len(r.students)
}

// Add validates s and appends it to the end of the roster.
func (r *Roster) Add(s Student) error {
	if err := r.validator.ValidateStudent(s); err != nil {
		return err
	}
	r.students = append(r.students, s)
	return nil
}

// Get returns the student at index i
func (r *Roster) Get(i int) (Student, error) {
	if i < 0 || i >= len(r.students) {
		return Student{}, ErrNotFound
	}
	return r.students[i], nil
}

// Remove deletes the student at index i, preserving the order of the rest.
// Capacity is kept for later adds.
func (r *Roster) Remove(i int) error {
	if i < 0 || i >= len(r.students) {
		return ErrNotFound
	}
	copy(r.students[i:], r.students[i+1:])
	r.students[len(r.students)-1] = Student{}
	r.students = r.students[:len(r.students)-1]
	return nil
}

// Find returns the index of the first student whose field exactly matches
// value. Only name, email and id are searchable.
func (r *Roster) Find(f Field, value string) (int, error) {
	if !f.Searchable() {
		return -1, &ValidationError{Field: f, Value: value, Reason: "field is not searchable"}
	}
	for i, s := range r.students {
		if s.Value(f) == value {
			return i, nil
		}
	}
	return -1, ErrNotFound
}

// Update validates value for field f and overwrites it on the student at i.
// On any error the student is left unchanged.
func (r *Roster) Update(i int, f Field, value string) error {
	if i < 0 || i >= len(r.students) {
		return ErrNotFound
	}
	s := &r.students[i]
	switch f {
	case FieldName:
		if err := r.validator.ValidateName(value); err != nil {
			return err
		}
		s.Name = value
	case FieldEmail:
		if err := r.validator.ValidateEmail(value); err != nil {
			return err
		}
		s.Email = value
	case FieldID:
		if err := r.validator.ValidateID(value); err != nil {
			return err
		}
		s.ID = value
	case FieldPresentation, FieldEssay, FieldProject:
		g, err := r.validator.ValidateGrade(f, value)
		if err != nil {
			return err
		}
		switch f {
		case FieldPresentation:
			s.Presentation = g
		case FieldEssay:
			s.Essay = g
		default:
			s.Project = g
		}
	default:
		return &ValidationError{Field: f, Value: value, Reason: "unknown field"}
	}
	return nil
}

// List returns a copy of the students in roster order
func (r *Roster) List() []Student {
	out := make([]Student, len(r.students))
	copy(out, r.students)
	return out
}

// Snapshot captures the current contents for a later Restore.
func (r *Roster) Snapshot() []Student {
	return r.List()
}

// Restore replaces the contents with a snapshot. The snapshot is not
// re-validated.
func (r *Roster) Restore(snapshot []Student) {
	r.students = append(r.students[:0], snapshot...)
}
