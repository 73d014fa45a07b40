package dynamo

import (
	"strings"

	"github.com/C0de-cloud/Notes-API/models"
)

type dynamoUser struct {
	PK           string `dynamodbav:"PK"`
	SK           string `dynamodbav:"SK"`
	Id           string `dynamodbav:"Id"`
	Email        string `dynamodbav:"Email"`
	Username     string `dynamodbav:"Username"`
	FullName     string `dynamodbav:"FullName"`
	PasswordHash string `dynamodbav:"PasswordHash"`
	Created      int64  `dynamodbav:"Created"`
	Updated      int64  `dynamodbav:"Updated"`
}

// Map domain User -> Dynamo
func userToDynamo(u models.User) dynamoUser {
	return dynamoUser{
		PK:           "USER#" + u.Id,
		SK:           "PROFILE",
		Id:           u.Id,
		Email:        u.Email,
		Username:     u.Username,
		FullName:     u.FullName,
		PasswordHash: u.PasswordHash,
		Created:      u.Created,
		Updated:      u.Updated,
	}
}

// Map Dynamo -> domain User
func userFromDynamo(du dynamoUser) models.User {
	return models.User{
		Id:           du.Id,
		Email:        du.Email,
		Username:     du.Username,
		FullName:     du.FullName,
		PasswordHash: du.PasswordHash,
		Created:      du.Created,
		Updated:      du.Updated,
	}
}

// uniqueItem reserves a unique value (email or username) for a user.
// Created with a conditional put so two users can never claim the same value.
type uniqueItem struct {
	PK     string `dynamodbav:"PK"`
	SK     string `dynamodbav:"SK"`
	UserId string `dynamodbav:"UserId"`
}

func emailUniqueItem(email string, userId string) uniqueItem {
	return uniqueItem{PK: "EMAIL#" + strings.ToLower(email), SK: "UNIQUE", UserId: userId}
}

func usernameUniqueItem(username string, userId string) uniqueItem {
	return uniqueItem{PK: "UNAME#" + username, SK: "UNIQUE", UserId: userId}
}

type dynamoNote struct {
	PK      string   `dynamodbav:"PK"`
	SK      string   `dynamodbav:"SK"`
	Id      string   `dynamodbav:"Id"`
	OwnerId string   `dynamodbav:"OwnerId"`
	Title   string   `dynamodbav:"Title"`
	Content string   `dynamodbav:"Content"`
	Color   string   `dynamodbav:"Color"`
	Tags    []string `dynamodbav:"Tags"`
	Pinned  bool     `dynamodbav:"Pinned"`
	Created int64    `dynamodbav:"Created"`
	Updated int64    `dynamodbav:"Updated"`
}

func noteToDynamo(n models.Note) dynamoNote {
	return dynamoNote{
		PK:      "NOTE#" + n.Id,
		SK:      "META",
		Id:      n.Id,
		OwnerId: n.OwnerId,
		Title:   n.Title,
		Content: n.Content,
		Color:   n.Color,
		Tags:    n.Tags,
		Pinned:  n.Pinned,
		Created: n.Created,
		Updated: n.Updated,
	}
}

func noteFromDynamo(dn dynamoNote) models.Note {
	return models.Note{
		Id:      dn.Id,
		OwnerId: dn.OwnerId,
		Title:   dn.Title,
		Content: dn.Content,
		Color:   dn.Color,
		Tags:    dn.Tags,
		Pinned:  dn.Pinned,
		Created: dn.Created,
		Updated: dn.Updated,
	}
}

type dynamoGrant struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	GranteeId  string `dynamodbav:"GranteeId"`
	Permission string `dynamodbav:"Permission"`
	Created    int64  `dynamodbav:"Created"`
	Updated    int64  `dynamodbav:"Updated"`
}

func grantToDynamo(g models.ShareGrant) dynamoGrant {
	return dynamoGrant{
		PK:         "NOTE#" + g.NoteId,
		SK:         "GRANT#" + g.GranteeId,
		GranteeId:  g.GranteeId,
		Permission: string(g.Permission),
		Created:    g.Created,
		Updated:    g.Updated,
	}
}

func grantFromDynamo(dg dynamoGrant) models.ShareGrant {
	return models.ShareGrant{
		NoteId:     strings.TrimPrefix(dg.PK, "NOTE#"),
		GranteeId:  dg.GranteeId,
		Permission: models.Permission(dg.Permission),
		Created:    dg.Created,
		Updated:    dg.Updated,
	}
}

type dynamoCollection struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	Id          string `dynamodbav:"Id"`
	OwnerId     string `dynamodbav:"OwnerId"`
	Name        string `dynamodbav:"Name"`
	Description string `dynamodbav:"Description"`
	Color       string `dynamodbav:"Color"`
	Created     int64  `dynamodbav:"Created"`
	Updated     int64  `dynamodbav:"Updated"`
}

func collectionToDynamo(c models.Collection) dynamoCollection {
	return dynamoCollection{
		PK:          "COLL#" + c.Id,
		SK:          "META",
		Id:          c.Id,
		OwnerId:     c.OwnerId,
		Name:        c.Name,
		Description: c.Description,
		Color:       c.Color,
		Created:     c.Created,
		Updated:     c.Updated,
	}
}

func collectionFromDynamo(dc dynamoCollection) models.Collection {
	return models.Collection{
		Id:          dc.Id,
		OwnerId:     dc.OwnerId,
		Name:        dc.Name,
		Description: dc.Description,
		Color:       dc.Color,
		Created:     dc.Created,
		Updated:     dc.Updated,
	}
}

type dynamoMember struct {
	PK      string `dynamodbav:"PK"`
	SK      string `dynamodbav:"SK"`
	NoteId  string `dynamodbav:"NoteId"`
	AddedAt int64  `dynamodbav:"AddedAt"`
}

func memberToDynamo(m models.CollectionMember) dynamoMember {
	return dynamoMember{
		PK:      "COLL#" + m.CollectionId,
		SK:      "NOTE#" + m.NoteId,
		NoteId:  m.NoteId,
		AddedAt: m.AddedAt,
	}
}

func memberFromDynamo(dm dynamoMember) models.CollectionMember {
	return models.CollectionMember{
		CollectionId: strings.TrimPrefix(dm.PK, "COLL#"),
		NoteId:       dm.NoteId,
		AddedAt:      dm.AddedAt,
	}
}
