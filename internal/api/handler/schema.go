package handler

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

// loginRequest accepts either a username or an email as identifier.
type loginRequest struct {
	Username string `json:"username" validate:"required_without=Email"`
	Email    string `json:"email"`
	Password string `json:"password" validate:"required"`
}

func (r loginRequest) identifier() string {
	if r.Username != "" {
		return r.Username
	}
	return r.Email
}

type registerUserRequest struct {
	Username string `json:"username" validate:"required,max=80"`
	Email    string `json:"email"    validate:"required,email,max=120"`
	Password string `json:"password" validate:"required"`
}

type profileResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// --- Students ---

type studentResponse struct {
	ID                 string `json:"id"`
	RegistrationNumber string `json:"registrationNumber"`
	FirstName          string `json:"firstName"`
	MiddleName         string `json:"middleName"`
	LastName           string `json:"lastName"`
	AdmissionNumber    string `json:"admissionNumber"`
	Photo              string `json:"photo"`
}

type registerStudentResponse struct {
	Message string          `json:"message"`
	Student studentResponse `json:"student"`
}
