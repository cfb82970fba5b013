package test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/klasemy/course-store/core/course"
	"github.com/klasemy/course-store/core/order"
	"github.com/klasemy/course-store/core/user"
	"github.com/klasemy/course-store/validate"
)

type orderTest struct {
	*TestEnv
}

func TestOrder(t *testing.T) {
	env, err := NewTestEnv(t, "order_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	ot := &orderTest{env}
	ct := &courseTest{env}

	if err := ot.Login(ot.AdminEmail, ot.AdminPass); err != nil {
		t.Fatal(err)
	}
	intro := ct.createCourseOK(t, "Intro to Go", 999)
	sql := ct.createCourseOK(t, "Practical SQL", 1299)
	if err := ot.Logout(); err != nil {
		t.Fatal(err)
	}

	if err := ot.Login(ot.UserEmail, ot.UserPass); err != nil {
		t.Fatal(err)
	}

	var me user.User
	if _, err := ot.get("/users/current", &me); err != nil {
		t.Fatal(err)
	}

	ord := ot.testCheckout(t, me.ID)
	ot.testDuplicateReference(t)
	ot.testOwnership(t, intro, sql)
	ot.testReceipt(t, ord)

	if err := ot.Logout(); err != nil {
		t.Fatal(err)
	}

	guestOrd := ot.testGuestCheckout(t)
	ot.testPendingConfirm(t, me.ID, sql)
	ot.testAdminList(t, guestOrd)
}

// testCheckout covers the happy path: the order comes back confirmed,
// stamped server-side, and attributed to the logged-in user.
func (ot *orderTest) testCheckout(t *testing.T, userID string) order.Order {
	before := time.Now().UTC().Add(-time.Second)

	body := fmt.Sprintf(`{
		"customer": %q,
		"email": %q,
		"reference": "TXN-001",
		"courses": ["Intro to Go"],
		"amount": 999
	}`, ot.UserName, ot.UserEmail)

	var ord order.Order
	status, err := ot.request(http.MethodPost, "/orders", body, &ord)
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusCreated {
		t.Fatalf("can't checkout: status code %d", status)
	}

	if ord.Status != order.Confirmed {
		t.Fatalf("expected status %q, got %q", order.Confirmed, ord.Status)
	}
	if ord.Amount != 999 {
		t.Fatalf("expected amount 999, got %d", ord.Amount)
	}
	if len(ord.Courses) != 1 || ord.Courses[0] != "Intro to Go" {
		t.Fatalf("expected courses [Intro to Go], got %v", ord.Courses)
	}
	if ord.UserID == nil || *ord.UserID != userID {
		t.Fatalf("order not attributed to user %s: %v", userID, ord.UserID)
	}
	if ord.CreatedAt.Before(before) {
		t.Fatalf("timestamp %v predates call time %v", ord.CreatedAt, before)
	}

	return ord
}

func (ot *orderTest) testDuplicateReference(t *testing.T) {
	body := `{
		"customer": "Somebody Else",
		"email": "else@coursestore.test",
		"reference": "TXN-001",
		"courses": ["Practical SQL"],
		"amount": 1299
	}`

	status, err := ot.request(http.MethodPost, "/orders", body, nil)
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusConflict {
		t.Fatalf("duplicate reference: expected 409, got %d", status)
	}
}

func (ot *orderTest) testOwnership(t *testing.T, intro course.Course, sql course.Course) {
	var owned []course.Course
	if _, err := ot.get("/courses/owned", &owned); err != nil {
		t.Fatal(err)
	}

	if len(owned) != 1 || owned[0].ID != intro.ID {
		t.Fatalf("expected owned courses [%d], got %v", intro.ID, owned)
	}

	if !ot.purchased(t, intro.ID) {
		t.Fatal("purchased course reported as not purchased")
	}
	if ot.purchased(t, sql.ID) {
		t.Fatal("unpurchased course reported as purchased")
	}
}

func (ot *orderTest) purchased(t *testing.T, courseID int) bool {
	var res struct {
		Purchased bool `json:"purchased"`
	}
	status, err := ot.get(fmt.Sprintf("/courses/%d/purchased", courseID), &res)
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusOK {
		t.Fatalf("can't check purchase of course %d: status code %d", courseID, status)
	}
	return res.Purchased
}

// testReceipt checks both receipt channels: the download endpoint and
// the local fallback artifact the unconfigured mailer must produce.
func (ot *orderTest) testReceipt(t *testing.T, ord order.Order) {
	w, err := ot.Client().Get(ot.URL + "/orders/" + ord.ID + "/receipt")
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		t.Fatalf("can't download receipt: status code %s", w.Status)
	}

	text, err := io.ReadAll(w.Body)
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"TXN-001", "Intro to Go", "999"} {
		if !strings.Contains(string(text), want) {
			t.Fatalf("receipt does not mention %q:\n%s", want, text)
		}
	}

	path := ot.Mailer.FallbackPath(ord.Reference)
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(path); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("fallback receipt %s never appeared", path)
		}
		time.Sleep(20 * time.Millisecond)
	}

	artifact, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(artifact), "TXN-001") {
		t.Fatalf("fallback receipt does not mention the reference:\n%s", artifact)
	}
}

func (ot *orderTest) testGuestCheckout(t *testing.T) order.Order {
	body := `{
		"customer": "Guest Buyer",
		"email": "guest@coursestore.test",
		"reference": "TXN-002",
		"courses": ["Practical SQL"],
		"amount": 1299
	}`

	var ord order.Order
	status, err := ot.request(http.MethodPost, "/orders", body, &ord)
	if err != nil {
		t.Fatal(err)
	}
	if status != http.StatusCreated {
		t.Fatalf("guest can't checkout: status code %d", status)
	}

	if ord.UserID != nil {
		t.Fatalf("guest order attributed to user %s", *ord.UserID)
	}

	if status, _ := ot.get("/orders/"+ord.ID, nil); status != http.StatusUnauthorized {
		t.Fatalf("guest order fetch without login: expected 401, got %d", status)
	}

	return ord
}

// testPendingConfirm seeds a pending order straight into the store and
// walks it through the admin confirmation: ownership must only appear
// once the order is confirmed, and confirming twice changes nothing.
func (ot *orderTest) testPendingConfirm(t *testing.T, userID string, sql course.Course) {
	now := time.Now().UTC()
	pending := order.Order{
		ID:        validate.GenerateID(),
		UserID:    &userID,
		Customer:  ot.UserName,
		Email:     ot.UserEmail,
		Reference: "TXN-PEND",
		Courses:   []string{sql.Name},
		Amount:    sql.Price,
		Status:    order.Pending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := order.Create(context.Background(), ot.DB, pending); err != nil {
		t.Fatalf("seeding pending order: %v", err)
	}

	if err := ot.Login(ot.UserEmail, ot.UserPass); err != nil {
		t.Fatal(err)
	}
	if ot.purchased(t, sql.ID) {
		t.Fatal("pending order must not grant ownership")
	}
	if err := ot.Logout(); err != nil {
		t.Fatal(err)
	}

	if err := ot.Login(ot.AdminEmail, ot.AdminPass); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		status, err := ot.request(http.MethodPost, "/orders/"+pending.ID+"/confirm", "", nil)
		if err != nil {
			t.Fatal(err)
		}
		if status != http.StatusNoContent {
			t.Fatalf("confirm attempt %d: status code %d", i+1, status)
		}
	}

	var ord order.Order
	if _, err := ot.get("/orders/"+pending.ID, &ord); err != nil {
		t.Fatal(err)
	}
	if ord.Status != order.Confirmed {
		t.Fatalf("expected status %q after confirm, got %q", order.Confirmed, ord.Status)
	}

	if err := ot.Logout(); err != nil {
		t.Fatal(err)
	}

	if err := ot.Login(ot.UserEmail, ot.UserPass); err != nil {
		t.Fatal(err)
	}
	if !ot.purchased(t, sql.ID) {
		t.Fatal("confirmed order must grant ownership")
	}
	if err := ot.Logout(); err != nil {
		t.Fatal(err)
	}
}

func (ot *orderTest) testAdminList(t *testing.T, guestOrd order.Order) {
	if err := ot.Login(ot.UserEmail, ot.UserPass); err != nil {
		t.Fatal(err)
	}
	if status, _ := ot.get("/orders", nil); status != http.StatusForbidden {
		t.Fatalf("non-admin order list: expected 403, got %d", status)
	}

	if status, _ := ot.get("/orders/"+guestOrd.ID, nil); status != http.StatusForbidden {
		t.Fatalf("foreign order fetch: expected 403, got %d", status)
	}
	if err := ot.Logout(); err != nil {
		t.Fatal(err)
	}

	if err := ot.Login(ot.AdminEmail, ot.AdminPass); err != nil {
		t.Fatal(err)
	}
	defer ot.Logout()

	var orders []order.Order
	if _, err := ot.get("/orders", &orders); err != nil {
		t.Fatal(err)
	}

	if len(orders) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(orders))
	}

	for i := 1; i < len(orders); i++ {
		if orders[i-1].CreatedAt.Before(orders[i].CreatedAt) {
			t.Fatalf("orders not sorted newest first: %v before %v", orders[i-1].CreatedAt, orders[i].CreatedAt)
		}
	}
}
