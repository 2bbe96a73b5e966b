package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rheyna/duncord/pkg/database/models"
)

func TestClearRecordMembersRoundTrip(t *testing.T) {
	var rec models.ClearRecord
	rec.SetMembers([]int64{21, 0, 35})

	assert.Equal(t, 3, rec.MemberCount)
	assert.Equal(t, []int64{21, 0, 35}, rec.Members(), "the 0 placeholder survives storage")
	assert.Nil(t, rec.Member4)
}

func TestClearRecordMembersFullParty(t *testing.T) {
	ids := make([]int64, models.MaxPartySize)
	for i := range ids {
		ids[i] = int64(i + 1)
	}

	var rec models.ClearRecord
	rec.SetMembers(ids)
	assert.Equal(t, models.MaxPartySize, rec.MemberCount)
	assert.Equal(t, ids, rec.Members())
}

func TestLinkagePopulated(t *testing.T) {
	star := 20130501
	acc := int64(77)
	zero := int64(0)

	tests := []struct {
		name string
		row  models.CharacterIdentity
		want bool
	}{
		{
			name: "fully linked",
			row:  models.CharacterIdentity{AccountID: &acc, StarHouseDate: &star},
			want: true,
		},
		{
			name: "no account",
			row:  models.CharacterIdentity{StarHouseDate: &star},
			want: false,
		},
		{
			name: "zero account id",
			row:  models.CharacterIdentity{AccountID: &zero, StarHouseDate: &star},
			want: false,
		},
		{
			name: "no star house date",
			row:  models.CharacterIdentity{AccountID: &acc},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.row.LinkagePopulated())
		})
	}
}
