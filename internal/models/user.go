package models

// User is one entry of the GetAllUsers directory.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ImagePath string `json:"imagePath,omitempty"`
	IsOnline  bool   `json:"isOnline"`
}
