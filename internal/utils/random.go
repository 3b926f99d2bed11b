package utils

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"unicode"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/charging-siting/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "霞", "飞", "玲", "超",
	"华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1

	var name strings.Builder
	name.WriteString(surname)
	for i := 0; i < nameLength; i++ {
		name.WriteString(commonNameCharacters[rand.Intn(len(commonNameCharacters))])
	}
	return name.String()
}

var digits = "0123456789"

// GenerateUsernameFromChineseName 取每个字拼音的随机前缀再加上 1~3 位数字
func GenerateUsernameFromChineseName(chineseName string) string {
	var username strings.Builder
	for _, py := range pinyin.LazyConvert(chineseName, nil) {
		username.WriteString(py[:rand.Intn(len(py))+1])
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username.WriteByte(digits[rand.Intn(len(digits))])
	}

	return username.String()
}

// GenerateRandomPlanner 生成一个随机的规划员账号，用于填充测试数据
func GenerateRandomPlanner(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         domain.RolePlanner,
	}, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	password := make([]rune, length)
	for i := range password {
		password[i] = letters[rand.Intn(len(letters))]
	}
	return string(password)
}

// GenerateSiteCode 用名称中每个汉字的拼音首字母生成站点编码，例如 ("CS", "新街口停车场") -> "CS-XJKTCC"
// 字母和数字原样保留（转为大写），其他字符忽略
func GenerateSiteCode(prefix, name string) string {
	args := pinyin.NewArgs()
	args.Style = pinyin.FirstLetter

	var code strings.Builder
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			code.WriteRune(unicode.ToUpper(r))
		case unicode.Is(unicode.Han, r):
			for _, py := range pinyin.LazyPinyin(string(r), args) {
				code.WriteString(strings.ToUpper(py))
			}
		}
	}

	if code.Len() == 0 {
		return prefix
	}
	return prefix + "-" + code.String()
}

// UniqueCode 在编码重复时依次追加 -2、-3 ... 直到不再重复，used 会记录返回的编码
func UniqueCode(code string, used map[string]bool) string {
	candidate := code
	for n := 2; used[candidate]; n++ {
		candidate = fmt.Sprintf("%s-%d", code, n)
	}
	used[candidate] = true
	return candidate
}

// GenerateRandomCoordinate 在 center 周围 radiusKm 公里的范围内随机取一个点
func GenerateRandomCoordinate(center domain.Coordinate, radiusKm float64) domain.Coordinate {
	// 1 度纬度约 111 公里，经度需要按纬度缩放
	dLat := (rand.Float64()*2 - 1) * radiusKm / 111.0
	dLng := (rand.Float64()*2 - 1) * radiusKm / (111.0 * math.Cos(center.Lat*math.Pi/180))
	return domain.Coordinate{Lng: center.Lng + dLng, Lat: center.Lat + dLat}
}
