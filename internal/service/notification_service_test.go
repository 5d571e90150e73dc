package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/giftvault/internal/constants"
	"github.com/giftvault/internal/models"
	"github.com/giftvault/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupNotificationServiceTest(t *testing.T) (*NotificationService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:notification_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Notification{},
		&models.NotificationPreference{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	svc := NewNotificationService(
		repository.NewNotificationRepository(db),
		repository.NewNotificationPreferenceRepository(db),
		repository.NewUserRepository(db),
		nil,
		nil,
	)
	return svc, db
}

func seedNotificationUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{
		Email:  email,
		Role:   constants.RoleUser,
		Status: constants.UserStatusActive,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user failed: %v", err)
	}
	return user
}

func TestNotifyCreatesInAppNotification(t *testing.T) {
	svc, db := setupNotificationServiceTest(t)
	user := seedNotificationUser(t, db, "notify@example.com")

	svc.Notify(NotificationInput{
		UserID: user.ID,
		Event:  constants.NotificationEventCardPurchased,
		Title:  "礼品卡售出",
		Body:   "「咖啡畅饮卡」售出一张。",
	})

	rows, total, err := svc.List(user.ID, false, 1, 10)
	if err != nil {
		t.Fatalf("list notifications failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("notification want 1 got total=%d len=%d", total, len(rows))
	}
	if rows[0].Event != constants.NotificationEventCardPurchased {
		t.Fatalf("event want card_purchased got %s", rows[0].Event)
	}
	if rows[0].ReadAt != nil {
		t.Fatalf("new notification should be unread")
	}
}

func TestNotifyIgnoresUnsupportedEvent(t *testing.T) {
	svc, db := setupNotificationServiceTest(t)
	user := seedNotificationUser(t, db, "unsupported@example.com")

	svc.Notify(NotificationInput{
		UserID: user.ID,
		Event:  "marketing_blast",
		Title:  "推广",
	})

	_, total, err := svc.List(user.ID, false, 1, 10)
	if err != nil {
		t.Fatalf("list notifications failed: %v", err)
	}
	if total != 0 {
		t.Fatalf("unsupported event must not create notifications, got %d", total)
	}
}

func TestNotifyRespectsInAppPreference(t *testing.T) {
	svc, db := setupNotificationServiceTest(t)
	user := seedNotificationUser(t, db, "pref@example.com")

	if _, err := svc.UpdatePreference(user.ID, constants.NotificationEventCardRedeemed, true, false); err != nil {
		t.Fatalf("update preference failed: %v", err)
	}

	svc.Notify(NotificationInput{
		UserID: user.ID,
		Event:  constants.NotificationEventCardRedeemed,
		Title:  "礼品卡已核销",
	})

	_, total, err := svc.List(user.ID, false, 1, 10)
	if err != nil {
		t.Fatalf("list notifications failed: %v", err)
	}
	if total != 0 {
		t.Fatalf("in-app disabled event must not create notifications, got %d", total)
	}
}

func TestMarkReadFlow(t *testing.T) {
	svc, db := setupNotificationServiceTest(t)
	user := seedNotificationUser(t, db, "read@example.com")

	for i := 0; i < 3; i++ {
		svc.Notify(NotificationInput{
			UserID: user.ID,
			Event:  constants.NotificationEventCardPurchased,
			Title:  fmt.Sprintf("售出通知 %d", i+1),
			Body:   fmt.Sprintf("第 %d 张", i+1),
		})
	}

	unread, err := svc.CountUnread(user.ID)
	if err != nil {
		t.Fatalf("count unread failed: %v", err)
	}
	if unread != 3 {
		t.Fatalf("unread want 3 got %d", unread)
	}

	rows, _, err := svc.List(user.ID, true, 1, 10)
	if err != nil {
		t.Fatalf("list unread failed: %v", err)
	}
	if err := svc.MarkRead(user.ID, rows[0].ID); err != nil {
		t.Fatalf("mark read failed: %v", err)
	}
	if unread, _ = svc.CountUnread(user.ID); unread != 2 {
		t.Fatalf("unread after mark want 2 got %d", unread)
	}

	// 他人的通知不可标记
	other := seedNotificationUser(t, db, "other@example.com")
	if err := svc.MarkRead(other.ID, rows[1].ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-user mark expected ErrNotFound, got %v", err)
	}

	if err := svc.MarkAllRead(user.ID); err != nil {
		t.Fatalf("mark all read failed: %v", err)
	}
	if unread, _ = svc.CountUnread(user.ID); unread != 0 {
		t.Fatalf("unread after mark all want 0 got %d", unread)
	}

	onlyUnread, total, err := svc.List(user.ID, true, 1, 10)
	if err != nil {
		t.Fatalf("list unread failed: %v", err)
	}
	if total != 0 || len(onlyUnread) != 0 {
		t.Fatalf("unread list should be empty, got total=%d len=%d", total, len(onlyUnread))
	}
}

func TestListPreferencesFillsDefaults(t *testing.T) {
	svc, db := setupNotificationServiceTest(t)
	user := seedNotificationUser(t, db, "defaults@example.com")

	prefs, err := svc.ListPreferences(user.ID)
	if err != nil {
		t.Fatalf("list preferences failed: %v", err)
	}
	if len(prefs) != len(supportedNotificationEvents) {
		t.Fatalf("preferences want %d got %d", len(supportedNotificationEvents), len(prefs))
	}
	for _, pref := range prefs {
		if !pref.EmailEnabled || !pref.InAppEnabled {
			t.Fatalf("default preference should enable both channels: %+v", pref)
		}
	}

	if _, err := svc.UpdatePreference(user.ID, constants.NotificationEventWelcome, false, true); err != nil {
		t.Fatalf("update preference failed: %v", err)
	}

	prefs, err = svc.ListPreferences(user.ID)
	if err != nil {
		t.Fatalf("list preferences failed: %v", err)
	}
	for _, pref := range prefs {
		if pref.Event == constants.NotificationEventWelcome && pref.EmailEnabled {
			t.Fatalf("stored preference should override default: %+v", pref)
		}
	}
}

func TestUpdatePreferenceRejectsUnknownEvent(t *testing.T) {
	svc, _ := setupNotificationServiceTest(t)

	if _, err := svc.UpdatePreference(1, "unknown_event", true, true); !errors.Is(err, ErrNotificationEventInvalid) {
		t.Fatalf("expected ErrNotificationEventInvalid, got %v", err)
	}
}
