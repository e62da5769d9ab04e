// Package i18n 提供面向用户的提示文案，默认泰语，按 Accept-Language 协商。
package i18n

import "golang.org/x/text/language"

// Key 是提示文案的标识。
type Key string

const (
	LoginRequired      Key = "login_required"
	LoginSuccess       Key = "login_success"
	InvalidCredentials Key = "invalid_credentials"
	LogoutSuccess      Key = "logout_success"
	TooManyAttempts    Key = "too_many_attempts"

	PasswordTooShort Key = "password_too_short"
	PasswordNoLower  Key = "password_no_lower"
	PasswordNoUpper  Key = "password_no_upper"
	PasswordNoDigit  Key = "password_no_digit"
	PasswordMismatch Key = "password_mismatch"
	UsernameTaken    Key = "username_taken"
	EmailTaken       Key = "email_taken"
	RegisterSuccess  Key = "register_success"
	MissingField     Key = "missing_field"

	ProductAdded   Key = "product_added"
	ProductUpdated Key = "product_updated"
	ProductDeleted Key = "product_deleted"
	InvalidNumber  Key = "invalid_number"

	SaleRecorded      Key = "sale_recorded"
	InsufficientStock Key = "insufficient_stock"
	InvalidQuantity   Key = "invalid_quantity"

	NotFound      Key = "not_found"
	InternalError Key = "internal_error"
)

var supported = []language.Tag{language.Thai, language.English}

var matcher = language.NewMatcher(supported)

var catalog = map[language.Tag]map[Key]string{
	language.Thai: {
		LoginRequired:      "กรุณาเข้าสู่ระบบก่อน",
		LoginSuccess:       "เข้าสู่ระบบสำเร็จ!",
		InvalidCredentials: "ชื่อผู้ใช้หรือรหัสผ่านไม่ถูกต้อง!",
		LogoutSuccess:      "ออกจากระบบสำเร็จ!",
		TooManyAttempts:    "พยายามเข้าสู่ระบบบ่อยเกินไป กรุณาลองใหม่ภายหลัง",
		PasswordTooShort:   "รหัสผ่านต้องมีอย่างน้อย 8 ตัวอักษร",
		PasswordNoLower:    "รหัสผ่านต้องมีตัวพิมพ์เล็ก",
		PasswordNoUpper:    "รหัสผ่านต้องมีตัวพิมพ์ใหญ่",
		PasswordNoDigit:    "รหัสผ่านต้องมีตัวเลข",
		PasswordMismatch:   "รหัสผ่านไม่ตรงกัน!",
		UsernameTaken:      "ชื่อผู้ใช้นี้มีคนใช้แล้ว!",
		EmailTaken:         "อีเมลนี้มีคนใช้แล้ว!",
		RegisterSuccess:    "ลงทะเบียนสำเร็จ!",
		MissingField:       "กรุณากรอกข้อมูลให้ครบถ้วน",
		ProductAdded:       "เพิ่มสินค้าสำเร็จ!",
		ProductUpdated:     "อัพเดทสินค้าสำเร็จ!",
		ProductDeleted:     "ลบสินค้าสำเร็จ!",
		InvalidNumber:      "ราคาหรือจำนวนสต็อกไม่ถูกต้อง",
		SaleRecorded:       "บันทึกการขายสำเร็จ!",
		InsufficientStock:  "สินค้าในสต็อกไม่เพียงพอ!",
		InvalidQuantity:    "จำนวนต้องมากกว่า 0",
		NotFound:           "ไม่พบข้อมูล",
		InternalError:      "เกิดข้อผิดพลาดภายในระบบ",
	},
	language.English: {
		LoginRequired:      "Please log in first.",
		LoginSuccess:       "Logged in successfully!",
		InvalidCredentials: "Invalid username or password!",
		LogoutSuccess:      "Logged out successfully!",
		TooManyAttempts:    "Too many login attempts, please try again later.",
		PasswordTooShort:   "Password must be at least 8 characters long.",
		PasswordNoLower:    "Password must contain a lowercase letter.",
		PasswordNoUpper:    "Password must contain an uppercase letter.",
		PasswordNoDigit:    "Password must contain a digit.",
		PasswordMismatch:   "Passwords do not match!",
		UsernameTaken:      "This username is already taken!",
		EmailTaken:         "This email is already registered!",
		RegisterSuccess:    "Registration successful!",
		MissingField:       "Please fill in all required fields.",
		ProductAdded:       "Product added!",
		ProductUpdated:     "Product updated!",
		ProductDeleted:     "Product deleted!",
		InvalidNumber:      "Price or stock is not a valid number.",
		SaleRecorded:       "Sale recorded!",
		InsufficientStock:  "Not enough stock!",
		InvalidQuantity:    "Quantity must be greater than 0.",
		NotFound:           "Not found.",
		InternalError:      "Internal server error.",
	},
}

// Negotiate 从 Accept-Language 头选择语言，解析失败或无匹配时返回泰语。
func Negotiate(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return supported[0]
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return supported[0]
	}
	return supported[idx]
}

// T 返回 key 在指定语言下的文案；缺失时回退泰语，再缺失返回 key 本身。
func T(tag language.Tag, key Key) string {
	if msgs, ok := catalog[tag]; ok {
		if s, ok := msgs[key]; ok {
			return s
		}
	}
	if s, ok := catalog[supported[0]][key]; ok {
		return s
	}
	return string(key)
}
