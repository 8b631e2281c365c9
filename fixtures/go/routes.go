package fixtures

import "net/http"

func Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /users/{id}", getUser)
	mux.HandleFunc("POST /users", createUser)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func getUser(w http.ResponseWriter, r *http.Request) {
	// Client calls are not routes.
	resp, err := http.Get("http://example.com/users")
	if err == nil {
		resp.Body.Close()
	}
}

func createUser(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusCreated)
}
