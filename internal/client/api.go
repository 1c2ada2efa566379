package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Account is the signed-in user as reported by the auth endpoints.
type Account struct {
	FullName string `json:"full_name,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Profile is the caller's profile.
type Profile struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// ProfileUpdate holds the profile fields to change; nil fields are left alone.
type ProfileUpdate struct {
	FullName *string `json:"full_name,omitempty"`
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
}

// SleepSession is one recorded sleep interval.
type SleepSession struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// SleepUpdate holds new bounds for a session; nil keeps the stored bound.
type SleepUpdate struct {
	StartTime *string `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`
}

// Task is a to-do item. Status is P, I or C; DueDate is YYYY-MM-DD.
type Task struct {
	ID      int64  `json:"id"`
	UserID  int64  `json:"user_id"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	Status  string `json:"status"`
	DueDate string `json:"due_date"`
}

// NewTask is the payload to create a task.
type NewTask struct {
	Title   string `json:"title"`
	Body    string `json:"body"`
	DueDate string `json:"due_date"`
}

// TaskUpdate holds the task fields to change.
type TaskUpdate struct {
	Title   *string `json:"title,omitempty"`
	Body    *string `json:"body,omitempty"`
	Status  *string `json:"status,omitempty"`
	DueDate *string `json:"due_date,omitempty"`
}

// Log is one day's journal entry.
type Log struct {
	ID      int64  `json:"id"`
	UserID  int64  `json:"user_id"`
	Summary string `json:"summary"`
	Rating  int    `json:"rating"`
	Date    string `json:"date"`
}

// NewLog is the payload to create a journal entry.
type NewLog struct {
	Summary string `json:"summary"`
	Rating  int    `json:"rating"`
	Date    string `json:"date"`
}

// LogUpdate holds the journal fields to change.
type LogUpdate struct {
	Summary *string `json:"summary,omitempty"`
	Rating  *int    `json:"rating,omitempty"`
}

// DayRating is a day's rating on the ratings chart.
type DayRating struct {
	Date   string `json:"date"`
	Rating int    `json:"rating"`
}

// call runs req and decodes the payload of an OK result into out (which may be nil).
func (c *Client) call(ctx context.Context, op string, req Request, out any) error {
	res, err := c.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("client.%s: %w", op, err)
	}
	if err := res.Err(); err != nil {
		return fmt.Errorf("client.%s: %w", op, err)
	}
	if out != nil {
		if err := res.Decode(out); err != nil {
			return fmt.Errorf("client.%s: %w", op, err)
		}
	}
	return nil
}

func itemPath(prefix string, id int64) string {
	return prefix + "/" + strconv.FormatInt(id, 10)
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, fullName, username, email, password string) (*Account, error) {
	var a Account
	body := map[string]string{"full_name": fullName, "username": username, "email": email, "password": password}
	if err := c.call(ctx, "Signup", Request{Method: http.MethodPost, Path: "/api/auth/signup", Body: body, NoRenew: true}, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Signin authenticates and stores the account in the session store.
func (c *Client) Signin(ctx context.Context, email, password string) (*Account, error) {
	var a Account
	body := map[string]string{"email": email, "password": password}
	if err := c.call(ctx, "Signin", Request{Method: http.MethodPost, Path: "/api/auth/signin", Body: body, NoRenew: true}, &a); err != nil {
		return nil, err
	}
	c.store.Set(&a)
	return &a, nil
}

// Refresh renews the session cookies explicitly.
func (c *Client) Refresh(ctx context.Context) error {
	return c.call(ctx, "Refresh", Request{Method: http.MethodPost, Path: refreshPath, NoRenew: true}, nil)
}

// Logout revokes the refresh token server side and clears the session store.
func (c *Client) Logout(ctx context.Context) error {
	err := c.call(ctx, "Logout", Request{Method: http.MethodPost, Path: "/api/auth/logout", NoRenew: true}, nil)
	c.store.Clear()
	return err
}

// ListSleep returns the caller's sleep sessions.
func (c *Client) ListSleep(ctx context.Context) ([]SleepSession, error) {
	var out []SleepSession
	if err := c.call(ctx, "ListSleep", Request{Method: http.MethodGet, Path: "/api/sleep"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSleep returns one sleep session.
func (c *Client) GetSleep(ctx context.Context, id int64) (*SleepSession, error) {
	var s SleepSession
	if err := c.call(ctx, "GetSleep", Request{Method: http.MethodGet, Path: itemPath("/api/sleep", id)}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSleep records a session. start and end use any accepted timestamp layout.
func (c *Client) CreateSleep(ctx context.Context, start, end string) (*SleepSession, error) {
	var s SleepSession
	body := map[string]string{"start_time": start, "end_time": end}
	if err := c.call(ctx, "CreateSleep", Request{Method: http.MethodPost, Path: "/api/sleep", Body: body}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateSleep changes a session's bounds.
func (c *Client) UpdateSleep(ctx context.Context, id int64, u SleepUpdate) (*SleepSession, error) {
	var s SleepSession
	if err := c.call(ctx, "UpdateSleep", Request{Method: http.MethodPatch, Path: itemPath("/api/sleep", id), Body: u}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSleep removes a session.
func (c *Client) DeleteSleep(ctx context.Context, id int64) error {
	return c.call(ctx, "DeleteSleep", Request{Method: http.MethodDelete, Path: itemPath("/api/sleep", id)}, nil)
}

// ListTasks returns the caller's tasks ordered by due date.
func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	var out []Task
	if err := c.call(ctx, "ListTasks", Request{Method: http.MethodGet, Path: "/api/tasks"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTask adds a task.
func (c *Client) CreateTask(ctx context.Context, t NewTask) (*Task, error) {
	var out Task
	if err := c.call(ctx, "CreateTask", Request{Method: http.MethodPost, Path: "/api/tasks", Body: t}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTask changes a task.
func (c *Client) UpdateTask(ctx context.Context, id int64, u TaskUpdate) (*Task, error) {
	var out Task
	if err := c.call(ctx, "UpdateTask", Request{Method: http.MethodPatch, Path: itemPath("/api/tasks", id), Body: u}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.call(ctx, "DeleteTask", Request{Method: http.MethodDelete, Path: itemPath("/api/tasks", id)}, nil)
}

// ListLogs returns the caller's journal, newest first.
func (c *Client) ListLogs(ctx context.Context) ([]Log, error) {
	var out []Log
	if err := c.call(ctx, "ListLogs", Request{Method: http.MethodGet, Path: "/api/logs"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateLog writes a day's entry.
func (c *Client) CreateLog(ctx context.Context, l NewLog) (*Log, error) {
	var out Log
	if err := c.call(ctx, "CreateLog", Request{Method: http.MethodPost, Path: "/api/logs", Body: l}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateLog changes an entry.
func (c *Client) UpdateLog(ctx context.Context, id int64, u LogUpdate) (*Log, error) {
	var out Log
	if err := c.call(ctx, "UpdateLog", Request{Method: http.MethodPatch, Path: itemPath("/api/logs", id), Body: u}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteLog removes an entry.
func (c *Client) DeleteLog(ctx context.Context, id int64) error {
	return c.call(ctx, "DeleteLog", Request{Method: http.MethodDelete, Path: itemPath("/api/logs", id)}, nil)
}

// Ratings returns the per-day ratings, oldest first.
func (c *Client) Ratings(ctx context.Context) ([]DayRating, error) {
	var out []DayRating
	if err := c.call(ctx, "Ratings", Request{Method: http.MethodGet, Path: "/api/day-rating"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProfile returns the caller's profile.
func (c *Client) GetProfile(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.call(ctx, "GetProfile", Request{Method: http.MethodGet, Path: "/api/user"}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfile changes the caller's profile.
func (c *Client) UpdateProfile(ctx context.Context, u ProfileUpdate) (*Profile, error) {
	var p Profile
	if err := c.call(ctx, "UpdateProfile", Request{Method: http.MethodPatch, Path: "/api/user", Body: u}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
