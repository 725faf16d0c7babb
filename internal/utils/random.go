package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "霞", "飞", "玲", "超",
	"华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌", "庆",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = letters[rand.Intn(len(letters))]
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

func GenerateRandomUser(role domain.Role, password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         role,
		IsActive:     true,
	}

	return user, nil
}

var venueNames = []string{"游泳馆", "羽毛球馆", "篮球馆", "网球馆", "健身中心", "乒乓球馆"}
var positions = []string{"前台", "救生员", "器材管理", "场地巡查", "教练助理"}

func GenerateRandomVenue() *domain.Venue {
	return &domain.Venue{
		Name:        venueNames[rand.Intn(len(venueNames))] + GenerateRandomID(0, 3),
		Description: "测试场馆" + GenerateRandomID(6, 4),
	}
}

// GenerateRandomShift 在一周内随机生成一个白天的班次
func GenerateRandomShift(weekStart time.Time, staffID *int64) *domain.RosterShift {
	startHour := rand.Intn(12) + 8 // 8~19 点开班
	duration := rand.Intn(4) + 2   // 2~5 小时

	return &domain.RosterShift{
		StaffID:      staffID,
		Date:         weekStart.AddDate(0, 0, rand.Intn(7)),
		StartTime:    fmt.Sprintf("%02d:00", startHour),
		EndTime:      fmt.Sprintf("%02d:00", min(startHour+duration, 23)),
		BreakMinutes: int32(rand.Intn(4) * 15),
		Position:     positions[rand.Intn(len(positions))],
	}
}

// GenerateRandomAvailability 随机生成员工某个星期几的可用时间申报
func GenerateRandomAvailability(userID int64, dayOfWeek int32) *domain.Availability {
	av := &domain.Availability{
		UserID:      userID,
		DayOfWeek:   dayOfWeek,
		IsAvailable: rand.Intn(10) > 1, // 大多数天可用
	}

	if av.IsAvailable {
		if rand.Intn(2) == 0 {
			av.IsAllDay = true
		} else {
			startHour := rand.Intn(6) + 8
			endHour := startHour + rand.Intn(8) + 4
			av.StartTime = fmt.Sprintf("%02d:00", startHour)
			av.EndTime = fmt.Sprintf("%02d:00", min(endHour, 23))
		}
	}

	return av
}

func GenerateRandomTimeOff(userID int64) *domain.TimeOffRequest {
	start := time.Now().AddDate(0, 0, rand.Intn(28))
	return &domain.TimeOffRequest{
		UserID:    userID,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, rand.Intn(5)),
		Status:    domain.TimeOffApproved,
		Reason:    "请假" + GenerateRandomID(4, 2),
	}
}
