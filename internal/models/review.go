package models

// Review is a verified buyer's rating of a product, one per (user, product).
type Review struct {
	Base
	ProductID    string `json:"product_id" gorm:"type:varchar(36);uniqueIndex:idx_review_user_product"`
	UserID       string `json:"user_id" gorm:"type:varchar(36);uniqueIndex:idx_review_user_product"`
	User         *User  `json:"user,omitempty"`
	Rating       int    `json:"rating"`
	Title        string `json:"title" gorm:"type:varchar(200)"`
	Comment      string `json:"comment" gorm:"type:text"`
	IsApproved   bool   `json:"is_approved" gorm:"default:true"`
	HelpfulCount int64  `json:"helpful_count" gorm:"-"`
}

// VoteType is the kind of vote a user casts on a review.
type VoteType string

const (
	VoteHelpful    VoteType = "helpful"
	VoteNotHelpful VoteType = "not_helpful"
)

// ReviewVote is one user's vote on a review.
type ReviewVote struct {
	Base
	ReviewID string   `json:"review_id" gorm:"type:varchar(36);uniqueIndex:idx_vote_user_review"`
	UserID   string   `json:"user_id" gorm:"type:varchar(36);uniqueIndex:idx_vote_user_review"`
	VoteType VoteType `json:"vote_type" gorm:"type:varchar(20)"`
}
